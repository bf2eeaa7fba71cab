package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
)

type ContactRepo struct {
	DB DBTX
}

const createContact = `-- name: CreateContact
INSERT INTO contacts (id, user_id, name, surname, email, phone, birthday, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, name, surname, email, phone, birthday, notes, created_at, updated_at
`

func (r *ContactRepo) Create(ctx context.Context, contact models.Contact) (models.Contact, error) {
	id := contact.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createContact,
		id, contact.UserID, contact.Name, contact.Surname, contact.Email, contact.Phone, contact.Birthday, contact.Notes)
	created, err := pgx.CollectOneRow(rows, rowToContact)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const contactExists = `-- name: ContactExistsByEmailOrPhone
SELECT EXISTS (
    SELECT 1 FROM contacts WHERE email = $1 OR phone = $2
)
`

// The check is deliberately not scoped by owner: the store enforces a single
// global namespace for contact emails and phones
func (r *ContactRepo) ExistsByEmailOrPhone(ctx context.Context, email string, phone string) (bool, error) {
	rows, _ := r.DB.Query(ctx, contactExists, email, phone)
	exists, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const getContactByID = `-- name: GetContactByID
SELECT id, user_id, name, surname, email, phone, birthday, notes, created_at, updated_at
FROM contacts
WHERE id = $1 AND user_id = $2
`

func (r *ContactRepo) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Contact, error) {
	rows, _ := r.DB.Query(ctx, getContactByID, id, userID)
	return collectContact(rows)
}

const updateContact = `-- name: UpdateContact
UPDATE contacts
SET name = $3, surname = $4, email = $5, phone = $6, birthday = $7, notes = $8, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, name, surname, email, phone, birthday, notes, created_at, updated_at
`

func (r *ContactRepo) Update(ctx context.Context, contact models.Contact) (models.Contact, error) {
	rows, _ := r.DB.Query(ctx, updateContact,
		contact.ID, contact.UserID, contact.Name, contact.Surname, contact.Email, contact.Phone, contact.Birthday, contact.Notes)
	return collectContact(rows)
}

const deleteContact = `-- name: DeleteContact
DELETE FROM contacts
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, name, surname, email, phone, birthday, notes, created_at, updated_at
`

func (r *ContactRepo) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (models.Contact, error) {
	rows, _ := r.DB.Query(ctx, deleteContact, id, userID)
	return collectContact(rows)
}

const listContacts = `-- name: ListContacts
SELECT id, user_id, name, surname, email, phone, birthday, notes, created_at, updated_at
FROM contacts
WHERE user_id = $1
  AND ($2 = ''
       OR name ILIKE $3
       OR email ILIKE $3
       OR phone ILIKE $3
       OR birthday::text LIKE $3
       OR notes ILIKE $3)
ORDER BY created_at, id
LIMIT $4 OFFSET $5
`

func (r *ContactRepo) List(ctx context.Context, arg repository.ListContactsParams) ([]models.Contact, error) {
	pattern := "%" + arg.Query + "%"

	rows, _ := r.DB.Query(ctx, listContacts, arg.UserID, arg.Query, pattern, arg.Limit, arg.Offset)
	contacts, err := pgx.CollectRows(rows, rowToContact)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contacts, nil
}

const getAllWithBirthdays = `-- name: GetAllWithBirthdays
SELECT id, user_id, name, surname, email, phone, birthday, notes, created_at, updated_at
FROM contacts
WHERE birthday IS NOT NULL
`

func (r *ContactRepo) GetAllWithBirthdays(ctx context.Context) ([]models.Contact, error) {
	rows, _ := r.DB.Query(ctx, getAllWithBirthdays)
	contacts, err := pgx.CollectRows(rows, rowToContact)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contacts, nil
}

func collectContact(rows pgx.Rows) (models.Contact, error) {
	contact, err := pgx.CollectOneRow(rows, rowToContact)

	switch {
	case err == nil:
		return contact, nil
	case errors.Is(err, pgx.ErrNoRows):
		return contact, apperrors.ErrContactNotFound
	default:
		return contact, fmt.Errorf("db error: %w", err)
	}
}

func rowToContact(row pgx.CollectableRow) (models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Surname,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}
