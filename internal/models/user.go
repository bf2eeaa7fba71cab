package models

import (
	"time"

	"github.com/google/uuid"
)

// User role
// Stored in the db as plain text, so keep the values stable
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	AvatarURL      string    `json:"avatar_url"`
	Role           Role      `json:"role"`
	Confirmed      bool      `json:"confirmed"`
	// Currently active refresh token, nil if none issued or it was revoked.
	// A presented refresh token is valid only while it matches this value.
	RefreshToken *string   `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
