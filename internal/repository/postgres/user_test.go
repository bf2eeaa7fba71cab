package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
	"github.com/avelichko/contactkeeper/internal/testutil"
)

func mustCreateUser(t *testing.T, repo *UserRepo, email string) models.User {
	t.Helper()

	user, err := repo.Create(context.Background(), repository.CreateUserParams{
		Username:       "someuser",
		Email:          email,
		HashedPassword: "not-a-real-hash",
		AvatarURL:      "https://example.com/a.png",
	})
	require.NoError(t, err)
	return user
}

func TestUserRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		t.Run("sets defaults", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				repo := &UserRepo{DB: tx}

				user := mustCreateUser(t, repo, "poppy@example.com")

				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.Equal(t, models.RoleUser, user.Role)
				assert.False(t, user.Confirmed, "new user must start unconfirmed")
				assert.Nil(t, user.RefreshToken)
				assert.False(t, user.CreatedAt.IsZero())
			})
		})

		t.Run("duplicate email", func(t *testing.T) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				repo := &UserRepo{DB: tx}
				mustCreateUser(t, repo, "poppy@example.com")

				_, err := repo.Create(ctx, repository.CreateUserParams{
					Username:       "other",
					Email:          "poppy@example.com",
					HashedPassword: "hash",
				})

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("get by id and email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}
			created := mustCreateUser(t, repo, "poppy@example.com")

			byID, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Email, byID.Email)

			byEmail, err := repo.GetByEmail(ctx, "poppy@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, byEmail.ID)

			_, err = repo.GetByEmail(ctx, "nobody@example.com")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("refresh token roundtrip", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}
			created := mustCreateUser(t, repo, "poppy@example.com")

			token := "opaque-refresh-token"
			require.NoError(t, repo.UpdateRefreshToken(ctx, created.ID, &token))

			stored, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, stored.RefreshToken)
			assert.Equal(t, token, *stored.RefreshToken)

			// nil revokes
			require.NoError(t, repo.UpdateRefreshToken(ctx, created.ID, nil))
			stored, err = repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, stored.RefreshToken)
		})
	})

	t.Run("refresh token for missing user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}

			err := repo.UpdateRefreshToken(ctx, uuid.New(), nil)

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("confirm email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}
			created := mustCreateUser(t, repo, "poppy@example.com")

			require.NoError(t, repo.ConfirmEmail(ctx, created.Email))

			stored, err := repo.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, stored.Confirmed)

			require.ErrorIs(t, repo.ConfirmEmail(ctx, "nobody@example.com"), apperrors.ErrUserNotFound)
		})
	})

	t.Run("update avatar", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := &UserRepo{DB: tx}
			created := mustCreateUser(t, repo, "poppy@example.com")

			updated, err := repo.UpdateAvatar(ctx, created.Email, "https://cdn.example.com/new.png")

			require.NoError(t, err)
			assert.Equal(t, "https://cdn.example.com/new.png", updated.AvatarURL)

			_, err = repo.UpdateAvatar(ctx, "nobody@example.com", "x")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
