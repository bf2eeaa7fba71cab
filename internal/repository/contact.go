package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/avelichko/contactkeeper/internal/models"
)

type ListContactsParams struct {
	UserID uuid.UUID
	Limit  int
	Offset int

	// Optional search substring, matched case-insensitively against
	// name, email, phone, birthday (as text) and notes
	Query string
}

// Contact repository interface
// All lookups except List/GetAllWithBirthdays are scoped by (contact id, owning user)
type ContactRepo interface {
	// Insert a contact; the caller is responsible for the uniqueness check
	Create(ctx context.Context, contact models.Contact) (models.Contact, error)

	// True if any contact in the store (any owner) uses the email or phone
	ExistsByEmailOrPhone(ctx context.Context, email string, phone string) (bool, error)

	// If contact not found for the user must return apperrors.ErrContactNotFound
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Contact, error)
	Update(ctx context.Context, contact models.Contact) (models.Contact, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Contact, error)

	List(ctx context.Context, arg ListContactsParams) ([]models.Contact, error)

	// Every contact with a non-null birthday, all owners
	GetAllWithBirthdays(ctx context.Context) ([]models.Contact, error)
}
