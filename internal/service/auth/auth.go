package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/logger"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
	"github.com/avelichko/contactkeeper/internal/service/avatar"
)

// Mail with a confirmation link payload
// The notifier is responsible for turning the token into a link
type ConfirmationMail struct {
	Email    string
	Username string
	Token    string
}

type Notifier interface {
	SendConfirmation(ctx context.Context, mail ConfirmationMail) error
}

type Config struct {
	// Hasher to use during registration and login
	// Defaults to bcrypt
	Hasher PasswordHasher

	// How long a background confirmation-mail send may take
	MailTimeout time.Duration
}

// Credential service: passwords, token issuing, current-user resolution
type AuthService struct {
	hasher  PasswordHasher
	tokens  *TokenManager
	storage repository.Storage

	// Read-through cache in front of the users table
	cache UserCache

	notifier    Notifier
	mailTimeout time.Duration
	logger      logger.Logger
}

func NewService(cfg Config, tokens *TokenManager, storage repository.Storage, cache UserCache, notifier Notifier, l logger.Logger) (*AuthService, error) {
	if tokens == nil || storage == nil || cache == nil || notifier == nil {
		return nil, errors.New("tokens, storage, cache and notifier must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	mailTimeout := cfg.MailTimeout
	if mailTimeout == 0 {
		mailTimeout = 10 * time.Second
	}

	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AuthService{
		hasher:      hasher,
		tokens:      tokens,
		storage:     storage,
		cache:       cache,
		notifier:    notifier,
		mailTimeout: mailTimeout,
		logger:      l,
	}, nil
}

// Register creates an unconfirmed user and fires the confirmation mail.
// The new user gets a gravatar-backed avatar by default.
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	user, err = s.storage.User().Create(ctx, repository.CreateUserParams{
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		AvatarURL:      avatar.GravatarURL(email),
	})
	if err != nil {
		return user, err
	}

	s.sendConfirmation(user.Email, user.Username)

	return user, nil
}

// Login verifies credentials and rotates the stored refresh token.
// Confirmed state is always re-checked at the database here, never the cache.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, err
	}

	if !user.Confirmed {
		return pair, apperrors.ErrUserNotConfirmed
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	return s.issueAndStorePair(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh pair.
// A token that does not match the stored value is treated as replay: the
// stored token is cleared so the stolen copy dies together with ours.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	email, err := s.tokens.Parse(refresh, ScopeRefresh)
	if err != nil {
		return pair, err
	}

	user, err := s.storage.User().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return pair, apperrors.ErrInvalidToken
	case err != nil:
		return pair, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refresh {
		if err := s.storage.User().UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			return pair, err
		}
		return pair, apperrors.ErrRefreshTokenMismatch
	}

	return s.issueAndStorePair(ctx, user)
}

// Logout revokes the stored refresh token and drops the cached snapshot
func (s *AuthService) Logout(ctx context.Context, user models.User) error {
	if err := s.storage.User().UpdateRefreshToken(ctx, user.ID, nil); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, user.Email); err != nil {
		s.logger.Warn("can't drop cached user on logout", "email", user.Email, "error", err.Error())
	}

	return nil
}

// ConfirmEmail flips the confirmed flag for the subject of a verify token.
// Returns already=true if the email was confirmed before.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (already bool, err error) {
	email, err := s.tokens.Parse(token, ScopeVerify)
	if err != nil {
		return false, err
	}

	user, err := s.storage.User().GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	if err := s.storage.User().ConfirmEmail(ctx, email); err != nil {
		return false, err
	}

	if err := s.cache.Delete(ctx, email); err != nil {
		s.logger.Warn("can't drop cached user on confirm", "email", email, "error", err.Error())
	}

	return false, nil
}

// RequestConfirmation re-sends the confirmation mail.
// Returns already=true without sending if the account is confirmed.
func (s *AuthService) RequestConfirmation(ctx context.Context, email string) (already bool, err error) {
	user, err := s.storage.User().GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	if user.Confirmed {
		return true, nil
	}

	s.sendConfirmation(user.Email, user.Username)

	return false, nil
}

// ResolveUser turns a bearer access token into the user record.
// Cache first, database on miss; decode failures and corrupt cache entries
// collapse to ErrInvalidToken (fail closed, never fail open).
func (s *AuthService) ResolveUser(ctx context.Context, access string) (models.User, error) {
	var user models.User

	email, err := s.tokens.Parse(access, ScopeAccess)
	if err != nil {
		return user, err
	}

	user, hit, err := s.cache.Get(ctx, email)
	switch {
	case errors.Is(err, errCacheEntryCorrupt):
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	case err != nil:
		// Cache unreachable is not an auth failure, fall back to the database
		s.logger.Warn("user cache unavailable", "error", err.Error())
	case hit:
		return user, nil
	}

	user, err = s.storage.User().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return user, apperrors.ErrInvalidToken
	case err != nil:
		return user, err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.logger.Warn("can't cache user", "email", email, "error", err.Error())
	}

	return user, nil
}

func (s *AuthService) issueAndStorePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user.Email)
	if err != nil {
		return pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	if err := s.storage.User().UpdateRefreshToken(ctx, user.ID, &pair.Refresh.Value); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Fire-and-forget: the caller's request must not wait for SMTP, and a
// failed send is only logged, never retried
func (s *AuthService) sendConfirmation(email string, username string) {
	token, err := s.tokens.Issue(email, ScopeVerify)
	if err != nil {
		s.logger.Error("can't issue verification token", "email", email, "error", err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.mailTimeout)
		defer cancel()

		err := s.notifier.SendConfirmation(ctx, ConfirmationMail{
			Email:    email,
			Username: username,
			Token:    token.Value,
		})
		if err != nil {
			s.logger.Warn("confirmation mail not sent", "email", email, "error", err.Error())
		}
	}()
}
