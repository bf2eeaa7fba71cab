package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
	"github.com/avelichko/contactkeeper/internal/testutil"
)

func mustCreateContact(t *testing.T, repo *ContactRepo, userID uuid.UUID, email string, phone string) models.Contact {
	t.Helper()

	created, err := repo.Create(context.Background(), models.Contact{
		UserID:  userID,
		Name:    "Anna",
		Surname: "Smith",
		Email:   email,
		Phone:   phone,
	})
	require.NoError(t, err)
	return created
}

func TestContactRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	ctx := context.Background()

	// Contacts reference users, every test needs an owner
	owner := func(t *testing.T, tx pgx.Tx, email string) models.User {
		t.Helper()
		return mustCreateUser(t, &UserRepo{DB: tx}, email)
	}

	t.Run("create and get", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			user := owner(t, tx, "owner@example.com")

			birthday := time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC)
			created, err := repo.Create(ctx, models.Contact{
				UserID:   user.ID,
				Name:     "Anna",
				Surname:  "Smith",
				Email:    "anna@example.com",
				Phone:    "+1234567",
				Birthday: &birthday,
				Notes:    "from work",
			})
			require.NoError(t, err)

			got, err := repo.GetByID(ctx, created.ID, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "Anna", got.Name)
			assert.Equal(t, "from work", got.Notes)
			require.NotNil(t, got.Birthday)
			assert.Equal(t, birthday.Format(time.DateOnly), got.Birthday.Format(time.DateOnly))
		})
	})

	t.Run("get scoped by owner", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")
			bob := owner(t, tx, "bob@example.com")

			created := mustCreateContact(t, repo, alice.ID, "anna@example.com", "+1")

			_, err := repo.GetByID(ctx, created.ID, bob.ID)
			require.ErrorIs(t, err, apperrors.ErrContactNotFound)
		})
	})

	t.Run("exists by email or phone is global", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")

			mustCreateContact(t, repo, alice.ID, "anna@example.com", "+1")

			tests := []struct {
				email string
				phone string
				want  bool
			}{
				{"anna@example.com", "+999", true},
				{"other@example.com", "+1", true},
				{"other@example.com", "+999", false},
			}

			for _, tt := range tests {
				exists, err := repo.ExistsByEmailOrPhone(ctx, tt.email, tt.phone)
				require.NoError(t, err)
				assert.Equal(t, tt.want, exists, "email=%s phone=%s", tt.email, tt.phone)
			}
		})
	})

	t.Run("update", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")
			created := mustCreateContact(t, repo, alice.ID, "anna@example.com", "+1")

			created.Name = "Anna Maria"
			created.Notes = "updated"

			updated, err := repo.Update(ctx, created)
			require.NoError(t, err)
			assert.Equal(t, "Anna Maria", updated.Name)
			assert.Equal(t, "updated", updated.Notes)
		})
	})

	t.Run("delete", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")
			created := mustCreateContact(t, repo, alice.ID, "anna@example.com", "+1")

			deleted, err := repo.Delete(ctx, created.ID, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, deleted.ID)

			_, err = repo.GetByID(ctx, created.ID, alice.ID)
			require.ErrorIs(t, err, apperrors.ErrContactNotFound)

			_, err = repo.Delete(ctx, created.ID, alice.ID)
			require.ErrorIs(t, err, apperrors.ErrContactNotFound)
		})
	})

	t.Run("list", func(t *testing.T) {
		seed := func(t *testing.T, tx pgx.Tx) (*ContactRepo, models.User) {
			t.Helper()
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")

			for i := range 15 {
				mustCreateContact(t, repo, alice.ID,
					fmt.Sprintf("c%02d@example.com", i), fmt.Sprintf("+%02d", i))
			}
			return repo, alice
		}

		t.Run("paging", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				repo, alice := seed(t, tx)

				page, err := repo.List(ctx, repository.ListContactsParams{UserID: alice.ID, Limit: 10})
				require.NoError(t, err)
				require.Len(t, page, 10)

				rest, err := repo.List(ctx, repository.ListContactsParams{UserID: alice.ID, Limit: 10, Offset: 10})
				require.NoError(t, err)
				require.Len(t, rest, 5)

				// Insertion order is stable
				assert.Equal(t, "c00@example.com", page[0].Email)
				assert.Equal(t, "c10@example.com", rest[0].Email)
			})
		})

		t.Run("search matches email case-insensitively", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				repo, alice := seed(t, tx)

				found, err := repo.List(ctx, repository.ListContactsParams{
					UserID: alice.ID,
					Limit:  10,
					Query:  "C03@EXAMPLE",
				})

				require.NoError(t, err)
				require.Len(t, found, 1)
				assert.Equal(t, "c03@example.com", found[0].Email)
			})
		})

		t.Run("search never leaks other owners", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				repo := &ContactRepo{DB: tx}
				alice := owner(t, tx, "alice@example.com")
				bob := owner(t, tx, "bob@example.com")
				mustCreateContact(t, repo, bob.ID, "hidden@example.com", "+77")

				found, err := repo.List(ctx, repository.ListContactsParams{
					UserID: alice.ID,
					Limit:  10,
					Query:  "hidden",
				})

				require.NoError(t, err)
				assert.Empty(t, found)
			})
		})
	})

	t.Run("get all with birthdays", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")
			bob := owner(t, tx, "bob@example.com")

			birthday := time.Date(1990, time.May, 10, 0, 0, 0, 0, time.UTC)
			_, err := repo.Create(ctx, models.Contact{
				UserID: alice.ID, Email: "a@example.com", Phone: "+1", Birthday: &birthday,
			})
			require.NoError(t, err)
			mustCreateContact(t, repo, bob.ID, "b@example.com", "+2")

			got, err := repo.GetAllWithBirthdays(ctx)

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "a@example.com", got[0].Email)
		})
	})

	t.Run("cascade delete with the owner", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &ContactRepo{DB: tx}
			alice := owner(t, tx, "alice@example.com")
			created := mustCreateContact(t, repo, alice.ID, "anna@example.com", "+1")

			_, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", alice.ID)
			require.NoError(t, err)

			_, err = repo.GetByID(ctx, created.ID, alice.ID)
			require.ErrorIs(t, err, apperrors.ErrContactNotFound)
		})
	})
}
