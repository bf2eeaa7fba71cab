package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/avelichko/contactkeeper/internal/models"
)

type CreateUserParams struct {
	Username       string
	Email          string
	HashedPassword string
	AvatarURL      string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If a user with the same email exists must return apperrors.ErrUserAlreadyExists
	Create(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)

	// Store the currently active refresh token, nil revokes it
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error

	// Flip the confirmed flag for the user with the given email
	ConfirmEmail(ctx context.Context, email string) error

	// Replace the avatar URL and return the updated user
	UpdateAvatar(ctx context.Context, email string, url string) (models.User, error)
}
