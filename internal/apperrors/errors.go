package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserNotConfirmed   = errors.New("email not confirmed")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidToken         = errors.New("invalid token")
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")

	ErrContactAlreadyExists = errors.New("contact with this email or phone already exists")
	ErrContactNotFound      = errors.New("contact not found")
)
