package contact

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
)

const (
	defaultListLimit = 10

	// Days ahead (inclusive) the upcoming-birthday query looks at
	birthdayWindowDays = 7
)

type ContactParams struct {
	Name     string
	Surname  string
	Email    string
	Phone    string
	Birthday *time.Time
	Notes    string
}

type ListParams struct {
	Limit  int
	Offset int
	Query  string
}

type ContactService struct {
	storage repository.Storage

	// Overridable in tests; defaults to time.Now
	now func() time.Time
}

func NewService(storage repository.Storage) *ContactService {
	return &ContactService{
		storage: storage,
		now:     time.Now,
	}
}

// Create inserts a contact for the user.
// The email/phone uniqueness check is global across all owners, the
// same namespace rule the store always enforced; check and insert run in
// one transaction.
func (s *ContactService) Create(ctx context.Context, user models.User, params ContactParams) (models.Contact, error) {
	var created models.Contact

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		exists, err := st.Contact().ExistsByEmailOrPhone(ctx, params.Email, params.Phone)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrContactAlreadyExists
		}

		created, err = st.Contact().Create(ctx, models.Contact{
			UserID:   user.ID,
			Name:     params.Name,
			Surname:  params.Surname,
			Email:    params.Email,
			Phone:    params.Phone,
			Birthday: params.Birthday,
			Notes:    params.Notes,
		})
		return err
	})

	return created, err
}

func (s *ContactService) Get(ctx context.Context, id uuid.UUID, user models.User) (models.Contact, error) {
	return s.storage.Contact().GetByID(ctx, id, user.ID)
}

func (s *ContactService) List(ctx context.Context, user models.User, params ListParams) ([]models.Contact, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	return s.storage.Contact().List(ctx, repository.ListContactsParams{
		UserID: user.ID,
		Limit:  limit,
		Offset: offset,
		Query:  params.Query,
	})
}

// Update replaces the contact fields.
// A nil incoming birthday keeps the stored one, it never clears it.
func (s *ContactService) Update(ctx context.Context, id uuid.UUID, user models.User, params ContactParams) (models.Contact, error) {
	var updated models.Contact

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		stored, err := st.Contact().GetByID(ctx, id, user.ID)
		if err != nil {
			return err
		}

		stored.Name = params.Name
		stored.Surname = params.Surname
		stored.Email = params.Email
		stored.Phone = params.Phone
		stored.Notes = params.Notes
		if params.Birthday != nil {
			stored.Birthday = params.Birthday
		}

		updated, err = st.Contact().Update(ctx, stored)
		return err
	})

	return updated, err
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID, user models.User) (models.Contact, error) {
	return s.storage.Contact().Delete(ctx, id, user.ID)
}

// UpcomingBirthdays returns contacts whose birthday, projected onto the
// current year (or the next one if it already passed), falls within the
// next 7 days inclusive. Local dates, no timezone handling.
func (s *ContactService) UpcomingBirthdays(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.storage.Contact().GetAllWithBirthdays(ctx)
	if err != nil {
		return nil, err
	}

	today := dateOf(s.now())
	upcoming := make([]models.Contact, 0, len(contacts))

	for _, c := range contacts {
		if c.Birthday == nil {
			continue
		}
		if birthdayWithin(*c.Birthday, today, birthdayWindowDays) {
			upcoming = append(upcoming, c)
		}
	}

	return upcoming, nil
}

// Project the birthday onto today's year; if the projection already
// passed, roll it to the next year. Feb 29 normalizes to Mar 1 in
// non-leap years via time.Date.
func nextBirthday(birthday time.Time, today time.Time) time.Time {
	next := time.Date(today.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, today.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, today.Location())
	}
	return next
}

func birthdayWithin(birthday time.Time, today time.Time, days int) bool {
	next := nextBirthday(birthday, today)
	return !next.After(today.AddDate(0, 0, days))
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
