package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db store.DBTX
	// conn is nil when the store is bound to a transaction.
	conn   store.TxBeginner
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the BookStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBookStore(db *sql.DB, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

const bookColumns = `id, title, author, published_date, isbn`

func scanBook(row interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b         domain.Book
		published time.Time
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &published, &b.ISBN); err != nil {
		return nil, err
	}
	b.PublishedDate = domain.DateOf(published)
	return &b, nil
}

// List implements store.BookStore.List.
func (s *PostgresBookStore) List(ctx context.Context) ([]domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		log.Error("failed to list books", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list books: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	books := make([]domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			log.Error("failed to scan book row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating book rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}

	log.Debug("listed books", slog.Int("count", len(books)))
	return books, nil
}

// GetByID implements store.BookStore.GetByID.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b, err := scanBook(s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("book not found", slog.Int64("book_id", id))
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book", slog.String("error", err.Error()), slog.Int64("book_id", id))
		return nil, fmt.Errorf("failed to get book: %w", MapError(err))
	}

	return b, nil
}

// ExistsByISBN implements store.BookStore.ExistsByISBN.
func (s *PostgresBookStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check isbn",
			slog.String("error", err.Error()),
			slog.String("isbn", isbn))
		return false, fmt.Errorf("failed to check isbn: %w", MapError(err))
	}
	return exists, nil
}

// Create implements store.BookStore.Create.
// Returns store.ErrISBNExists if the isbn is already taken.
func (s *PostgresBookStore) Create(ctx context.Context, in domain.BookInput) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO books (title, author, published_date, isbn)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query, in.Title, in.Author, in.PublishedDate.Time(), in.ISBN).Scan(&id)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("isbn uniqueness violated on create", slog.String("isbn", in.ISBN))
			return 0, MapUniqueViolation(err, isbnConstraint, store.ErrISBNExists)
		}
		log.Error("failed to create book", slog.String("error", err.Error()), slog.String("isbn", in.ISBN))
		return 0, fmt.Errorf("failed to create book: %w", MapError(err))
	}

	log.Info("book created", slog.Int64("book_id", id), slog.String("isbn", in.ISBN))
	return id, nil
}

// Update implements store.BookStore.Update.
// Returns store.ErrBookNotFound or store.ErrISBNExists.
func (s *PostgresBookStore) Update(ctx context.Context, id int64, in domain.BookInput) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE books
		SET title = $1, author = $2, published_date = $3, isbn = $4, updated_at = NOW()
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query, in.Title, in.Author, in.PublishedDate.Time(), in.ISBN, id)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("isbn uniqueness violated on update", slog.Int64("book_id", id), slog.String("isbn", in.ISBN))
			return MapUniqueViolation(err, isbnConstraint, store.ErrISBNExists)
		}
		log.Error("failed to update book", slog.String("error", err.Error()), slog.Int64("book_id", id))
		return fmt.Errorf("failed to update book: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book updated", slog.Int64("book_id", id))
	return nil
}

// Delete implements store.BookStore.Delete.
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete book", slog.String("error", err.Error()), slog.Int64("book_id", id))
		return fmt.Errorf("failed to delete book: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	return nil
}

// InTx implements store.BookStore.InTx. A store already bound to a
// transaction runs fn inline in that transaction.
func (s *PostgresBookStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.BookStore) error) error {
	if s.conn == nil {
		return fn(ctx, s)
	}
	return store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.WithTx(tx))
	})
}

// WithTx implements store.BookStore.WithTx.
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{
		db:     tx,
		logger: s.logger,
	}
}
