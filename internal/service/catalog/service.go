package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Service provides CRUD operations over the book catalog.
type Service struct {
	books     store.BookStore
	validator *Validator
	logger    *slog.Logger
	ops       metric.Int64Counter
}

// NewService creates a catalog Service. A nil meter disables metrics.
func NewService(books store.BookStore, meter metric.Meter, logger *slog.Logger) (*Service, error) {
	if books == nil {
		return nil, errors.New("books cannot be nil")
	}
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("catalog")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ops, err := meter.Int64Counter(
		"bookshelf.catalog.operations",
		metric.WithDescription("Catalog operations by name and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog counter: %w", err)
	}

	return &Service{
		books:     books,
		validator: NewValidator(),
		logger:    logger.With(slog.String("component", "catalog_service")),
		ops:       ops,
	}, nil
}

// List returns every book ordered by id.
func (s *Service) List(ctx context.Context) (books []domain.Book, err error) {
	defer func() { s.record(ctx, "list", err) }()

	books, err = s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// Create validates payload and stores a new book, returning its id.
func (s *Service) Create(ctx context.Context, payload []byte) (id int64, err error) {
	defer func() { s.record(ctx, "create", err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	in, err := s.validator.Validate(payload)
	if err != nil {
		return 0, err
	}

	err = s.books.InTx(ctx, func(ctx context.Context, tx store.BookStore) error {
		exists, err := tx.ExistsByISBN(ctx, in.ISBN)
		if err != nil {
			return fmt.Errorf("failed to check isbn: %w", err)
		}
		if exists {
			return duplicateISBN(in.ISBN, store.ErrISBNExists)
		}

		id, err = tx.Create(ctx, *in)
		return err
	})
	if err != nil {
		return 0, mapStoreError(err, 0, in.ISBN)
	}

	log.Info("book added", slog.Int64("book_id", id), slog.String("isbn", in.ISBN))
	return id, nil
}

// Update validates payload and replaces every field of book id.
func (s *Service) Update(ctx context.Context, id int64, payload []byte) (_ int64, err error) {
	defer func() { s.record(ctx, "update", err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkID(id); err != nil {
		return 0, err
	}

	in, err := s.validator.Validate(payload)
	if err != nil {
		return 0, err
	}

	err = s.books.InTx(ctx, func(ctx context.Context, tx store.BookStore) error {
		existing, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if existing.ISBN != in.ISBN {
			taken, err := tx.ExistsByISBN(ctx, in.ISBN)
			if err != nil {
				return fmt.Errorf("failed to check isbn: %w", err)
			}
			if taken {
				return duplicateISBN(in.ISBN, store.ErrISBNExists)
			}
		}

		return tx.Update(ctx, id, *in)
	})
	if err != nil {
		return 0, mapStoreError(err, id, in.ISBN)
	}

	log.Info("book updated", slog.Int64("book_id", id))
	return id, nil
}

// Delete removes book id.
func (s *Service) Delete(ctx context.Context, id int64) (_ int64, err error) {
	defer func() { s.record(ctx, "delete", err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkID(id); err != nil {
		return 0, err
	}

	err = s.books.InTx(ctx, func(ctx context.Context, tx store.BookStore) error {
		if _, err := tx.GetByID(ctx, id); err != nil {
			return err
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return 0, mapStoreError(err, id, "")
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	return id, nil
}

func (s *Service) record(ctx context.Context, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.KindOf(err).String()
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func checkID(id int64) error {
	if id <= 0 {
		return domain.NewError(domain.KindBadRequest, MsgInvalidID, domain.ErrInvalidID)
	}
	return nil
}

func duplicateISBN(isbn string, cause error) *domain.Error {
	return domain.NewError(domain.KindConflict,
		fmt.Sprintf("The book with ISBN %s already exists in the system.", isbn), cause)
}

// mapStoreError turns store sentinels into client-facing errors. Anything
// already classified passes through; anything else stays internal.
func mapStoreError(err error, id int64, isbn string) error {
	var de *domain.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, store.ErrISBNExists):
		return duplicateISBN(isbn, err)
	case errors.Is(err, store.ErrBookNotFound):
		return domain.NewError(domain.KindNotFound, fmt.Sprintf("Book not found with id %d", id), err)
	default:
		return fmt.Errorf("catalog store operation failed: %w", err)
	}
}
