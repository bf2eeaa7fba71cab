package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelichko/contactkeeper/internal/apperrors"
	"github.com/avelichko/contactkeeper/internal/models"
	"github.com/avelichko/contactkeeper/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, password_hash, avatar_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, username, email, password_hash, avatar_url, refresh_token, role, confirmed, created_at, updated_at
`

func (r *UserRepo) Create(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), arg.Username, arg.Email, arg.HashedPassword, arg.AvatarURL)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, username, email, password_hash, avatar_url, refresh_token, role, confirmed, created_at, updated_at
FROM users
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, username, email, password_hash, avatar_url, refresh_token, role, confirmed, created_at, updated_at
FROM users
WHERE email = $1
`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const updateRefreshToken = `-- name: UpdateRefreshToken
UPDATE users
SET refresh_token = $2, updated_at = now()
WHERE id = $1
RETURNING id
`

func (r *UserRepo) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	rows, _ := r.DB.Query(ctx, updateRefreshToken, id, token)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrUserNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

const confirmEmail = `-- name: ConfirmEmail
UPDATE users
SET confirmed = true, updated_at = now()
WHERE email = $1
RETURNING id
`

func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	rows, _ := r.DB.Query(ctx, confirmEmail, email)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrUserNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

const updateAvatar = `-- name: UpdateAvatar
UPDATE users
SET avatar_url = $2, updated_at = now()
WHERE email = $1
RETURNING id, username, email, password_hash, avatar_url, refresh_token, role, confirmed, created_at, updated_at
`

func (r *UserRepo) UpdateAvatar(ctx context.Context, email string, url string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateAvatar, email, url)
	return collectUser(rows)
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.AvatarURL,
		&u.RefreshToken,
		&u.Role,
		&u.Confirmed,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
