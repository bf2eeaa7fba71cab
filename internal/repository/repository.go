package repository

import (
	"context"
)

// Storage bundles all repositories working over the same connection or transaction
type Storage interface {
	User() UserRepo
	Contact() ContactRepo

	// Run fn within a database transaction
	// The storage passed to fn is bound to that transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
