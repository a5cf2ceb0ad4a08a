package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/postgres"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresUserStore_GetByUsername(t *testing.T) {
	t.Parallel()

	t.Run("user with roles", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT password_hash FROM users WHERE username = $1")).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow("$2a$10$hash"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM user_roles")).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("ADMIN").AddRow("LEGACY"))

		s := postgres.NewPostgresUserStore(db, nil)
		u, err := s.GetByUsername(context.Background(), "admin")
		require.NoError(t, err)
		assert.Equal(t, "admin", u.Username)
		assert.Equal(t, "$2a$10$hash", u.PasswordHash)
		assert.Equal(t, []domain.Role{domain.RoleAdmin}, u.Roles, "unknown roles are dropped")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT password_hash FROM users").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"password_hash"}))

		s := postgres.NewPostgresUserStore(db, nil)
		_, err = s.GetByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("driver failure", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT password_hash FROM users").WillReturnError(errors.New("connection reset"))

		s := postgres.NewPostgresUserStore(db, nil)
		_, err = s.GetByUsername(context.Background(), "admin")
		require.Error(t, err)
		assert.False(t, store.IsNotFoundError(err))
	})
}
