package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// SeedUser is a credential provisioned at bootstrap.
type SeedUser struct {
	Username string
	Password string
	Roles    []domain.Role
}

// SampleBooks is the catalog inserted when sample seeding is enabled.
var SampleBooks = []domain.BookInput{
	{Title: "The Go Programming Language", Author: "Alan A. A. Donovan", PublishedDate: domain.NewDate(2015, time.October, 26), ISBN: "9780134190440"},
	{Title: "Clean Code", Author: "Robert C. Martin", PublishedDate: domain.NewDate(2008, time.August, 1), ISBN: "9780132350884"},
	{Title: "The Pragmatic Programmer", Author: "David Thomas", PublishedDate: domain.NewDate(2019, time.September, 13), ISBN: "9780135957059"},
	{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", PublishedDate: domain.NewDate(2017, time.March, 16), ISBN: "9781449373320"},
	{Title: "Refactoring", Author: "Martin Fowler", PublishedDate: domain.NewDate(2018, time.November, 20), ISBN: "9780134757599"},
	{Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson", PublishedDate: domain.NewDate(1996, time.July, 25), ISBN: "9780262510875"},
	{Title: "Code Complete", Author: "Steve McConnell", PublishedDate: domain.NewDate(2004, time.June, 9), ISBN: "9780735619678"},
	{Title: "The Mythical Man-Month", Author: "Frederick P. Brooks Jr.", PublishedDate: domain.NewDate(1995, time.August, 2), ISBN: "9780201835953"},
	{Title: "Domain-Driven Design", Author: "Eric Evans", PublishedDate: domain.NewDate(2003, time.August, 20), ISBN: "9780321125217"},
	{Title: "Site Reliability Engineering", Author: "Betsy Beyer", PublishedDate: domain.NewDate(2016, time.April, 16), ISBN: "9781491929124"},
	{Title: "Concurrency in Go", Author: "Katherine Cox-Buday", PublishedDate: domain.NewDate(2017, time.August, 10), ISBN: "9781491941195"},
}

// Seeder inserts bootstrap users and books. Every insert is idempotent:
// existing rows are left untouched.
type Seeder struct {
	db         *sql.DB
	bcryptCost int
	logger     *slog.Logger
}

// NewSeeder creates a Seeder hashing passwords at bcryptCost.
func NewSeeder(db *sql.DB, bcryptCost int, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "seeder")),
	}
}

// SeedUsers provisions users and their roles in a single transaction.
func (s *Seeder) SeedUsers(ctx context.Context, users []SeedUser) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, u := range users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
			if err != nil {
				return fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
			}

			candidate := domain.User{Username: u.Username, PasswordHash: string(hash), Roles: u.Roles}
			if err := candidate.Validate(); err != nil {
				return fmt.Errorf("%w: seed user %s: %w", store.ErrInvalidEntity, u.Username, err)
			}

			res, err := tx.ExecContext(ctx,
				`INSERT INTO users (username, password_hash) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING`,
				u.Username, string(hash))
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Username, MapError(err))
			}
			if n, _ := res.RowsAffected(); n == 0 {
				s.logger.Debug("user already present, skipping", slog.String("username", u.Username))
				continue
			}

			for _, role := range u.Roles {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO user_roles (username, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
					u.Username, string(role)); err != nil {
					return fmt.Errorf("failed to seed role %s for %s: %w", role, u.Username, MapError(err))
				}
			}
			s.logger.Info("seeded user", slog.String("username", u.Username), slog.Any("roles", u.Roles))
		}
		return nil
	})
}

// SeedBooks inserts books whose ISBN is not yet present.
func (s *Seeder) SeedBooks(ctx context.Context, books []domain.BookInput) error {
	inserted := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, b := range books {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO books (title, author, published_date, isbn) VALUES ($1, $2, $3, $4) ON CONFLICT (isbn) DO NOTHING`,
				b.Title, b.Author, b.PublishedDate.Time(), b.ISBN)
			if err != nil {
				return fmt.Errorf("failed to seed book %s: %w", b.ISBN, MapError(err))
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("seeded sample books", slog.Int("inserted", inserted), slog.Int("total", len(books)))
	return nil
}
