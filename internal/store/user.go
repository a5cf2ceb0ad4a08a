package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// UserStore is the read-only credential store. Users are provisioned at
// bootstrap; there are no mutation operations.
type UserStore interface {
	// GetByUsername retrieves a user together with its role set.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
