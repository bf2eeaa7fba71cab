package models

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Name    string
	Surname string
	Email   string
	Phone   string
	// Date only, time part is always midnight; nil if unknown
	Birthday  *time.Time
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
