package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/models"
)

// Scope tags a token with its purpose so that one kind can never be
// presented in place of another
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"
	ScopeVerify  Scope = "email_token"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultVerifyTokenTTL  = 7 * 24 * time.Hour
)

type TokenClaims struct {
	jwt.RegisteredClaims
	Scope Scope `json:"scope"`
}

// Token manager config with sensible defaults
type TokenConfig struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Per scope token lifetimes
	// If not set then defaults are used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
}

type TokenManager struct {
	key string
	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method: %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)
	setDefaultDuration(&cfg.VerifyTTL, defaultVerifyTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		verifyTTL:  cfg.VerifyTTL,
	}, nil
}

// Issue a signed token for the subject (user email) with the given scope
func (m *TokenManager) Issue(subject string, scope Scope) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.ttlFor(scope))

	token := jwt.NewWithClaims(
		m.alg,
		TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Scope: scope,
		},
	)

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Issue the access/refresh pair returned on login or refresh
func (m *TokenManager) IssuePair(subject string) (models.TokenPair, error) {
	access, err := m.Issue(subject, ScopeAccess)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.Issue(subject, ScopeRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse validates signature, expiry and scope and returns the subject.
// Any failure collapses to apperrors.ErrInvalidToken: the caller never
// learns whether the signature, the expiry or the scope was wrong.
func (m *TokenManager) Parse(tokenString string, scope Scope) (subject string, err error) {
	claims := &TokenClaims{}

	_, err = jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	if claims.Scope != scope {
		return "", fmt.Errorf("%w: unexpected scope %q", apperrors.ErrInvalidToken, claims.Scope)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", apperrors.ErrInvalidToken)
	}

	return claims.Subject, nil
}

func (m *TokenManager) ttlFor(scope Scope) time.Duration {
	switch scope {
	case ScopeRefresh:
		return m.refreshTTL
	case ScopeVerify:
		return m.verifyTTL
	default:
		return m.accessTTL
	}
}
