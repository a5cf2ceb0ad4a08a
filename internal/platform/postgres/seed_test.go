package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/postgres"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeeder_SeedUsers(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs("admin", "ADMIN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("user", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	seeder := postgres.NewSeeder(db, bcrypt.MinCost, nil)
	err = seeder.SeedUsers(context.Background(), []postgres.SeedUser{
		{Username: "admin", Password: "pass", Roles: []domain.Role{domain.RoleAdmin}},
		{Username: "user", Password: "pass", Roles: []domain.Role{domain.RoleUser}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "existing users must not get roles re-inserted")
}

func TestSeeder_SeedUsersRejectsInvalidUser(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	seeder := postgres.NewSeeder(db, bcrypt.MinCost, nil)
	err = seeder.SeedUsers(context.Background(), []postgres.SeedUser{
		{Username: "nobody", Password: "pass"},
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_SeedBooks(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	for range postgres.SampleBooks {
		mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (isbn) DO NOTHING")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	seeder := postgres.NewSeeder(db, bcrypt.MinCost, nil)
	require.NoError(t, seeder.SeedBooks(context.Background(), postgres.SampleBooks))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleBooksAreValid(t *testing.T) {
	t.Parallel()

	require.GreaterOrEqual(t, len(postgres.SampleBooks), 10)
	seen := map[string]bool{}
	isbn := regexp.MustCompile(`^\d{13}$`)
	for _, b := range postgres.SampleBooks {
		assert.Regexp(t, isbn, b.ISBN)
		assert.False(t, seen[b.ISBN], "duplicate sample isbn %s", b.ISBN)
		seen[b.ISBN] = true
		assert.NotEmpty(t, b.Title)
		assert.NotEmpty(t, b.Author)
		assert.False(t, b.PublishedDate.IsZero())
	}
}
