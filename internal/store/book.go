package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// BookStore defines the interface for book persistence.
//
// Implementations must enforce ISBN uniqueness themselves (for Postgres,
// a UNIQUE constraint) and report a violation as ErrISBNExists, so that a
// race between two writers that both passed ExistsByISBN is still caught.
type BookStore interface {
	// List returns every book ordered by id ascending.
	List(ctx context.Context) ([]domain.Book, error)

	// GetByID retrieves a book by id.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// ExistsByISBN reports whether any book carries the given ISBN.
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)

	// Create persists a new book and returns its assigned id.
	// Returns ErrISBNExists on a uniqueness violation.
	Create(ctx context.Context, in domain.BookInput) (int64, error)

	// Update replaces all mutable fields of the book with the given id.
	// Returns ErrBookNotFound if the book does not exist and
	// ErrISBNExists on a uniqueness violation.
	Update(ctx context.Context, id int64, in domain.BookInput) error

	// Delete removes the book with the given id.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id int64) error

	// InTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx BookStore) error) error

	// WithTx returns a new BookStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BookStore
}
