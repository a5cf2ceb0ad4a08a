package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/postgres"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBookStore(t *testing.T) (*postgres.PostgresBookStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewPostgresBookStore(db, nil), mock
}

var sampleInput = domain.BookInput{
	Title:         "Dune",
	Author:        "Frank Herbert",
	PublishedDate: domain.NewDate(1965, time.August, 1),
	ISBN:          "9780441013593",
}

func TestPostgresBookStore_List(t *testing.T) {
	t.Parallel()
	s, mock := newMockBookStore(t)

	rows := sqlmock.NewRows([]string{"id", "title", "author", "published_date", "isbn"}).
		AddRow(int64(1), "Dune", "Frank Herbert", time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), "9780441013593").
		AddRow(int64(2), "Emma", "Jane Austen", time.Date(1815, 12, 23, 0, 0, 0, 0, time.UTC), "9780141439587")
	mock.ExpectQuery(regexp.QuoteMeta("FROM books ORDER BY id")).WillReturnRows(rows)

	books, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, int64(1), books[0].ID)
	assert.Equal(t, "1965-08-01", books[0].PublishedDate.String())
	assert.Equal(t, "Emma", books[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookStore_ListEmpty(t *testing.T) {
	t.Parallel()
	s, mock := newMockBookStore(t)

	mock.ExpectQuery("FROM books").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "published_date", "isbn"}))

	books, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books, "empty catalog should be an empty slice, not nil")
	assert.Empty(t, books)
}

func TestPostgresBookStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM books WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "published_date", "isbn"}).
				AddRow(int64(5), "Dune", "Frank Herbert", time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), "9780441013593"))

		b, err := s.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Title)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectQuery("FROM books WHERE id").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author", "published_date", "isbn"}))

		_, err := s.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})
}

func TestPostgresBookStore_ExistsByISBN(t *testing.T) {
	t.Parallel()
	s, mock := newMockBookStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("9780441013593").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.ExistsByISBN(context.Background(), "9780441013593")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresBookStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO books")).
			WithArgs(sampleInput.Title, sampleInput.Author, sampleInput.PublishedDate.Time(), sampleInput.ISBN).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

		id, err := s.Create(context.Background(), sampleInput)
		require.NoError(t, err)
		assert.Equal(t, int64(12), id)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectQuery("INSERT INTO books").
			WillReturnError(newPgError("23505", "books_isbn_key"))

		_, err := s.Create(context.Background(), sampleInput)
		assert.ErrorIs(t, err, store.ErrISBNExists)
	})

	t.Run("driver failure", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectQuery("INSERT INTO books").WillReturnError(errors.New("connection reset"))

		_, err := s.Create(context.Background(), sampleInput)
		require.Error(t, err)
		assert.False(t, store.IsDuplicateError(err))
	})
}

func TestPostgresBookStore_Update(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WithArgs(sampleInput.Title, sampleInput.Author, sampleInput.PublishedDate.Time(), sampleInput.ISBN, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Update(context.Background(), 3, sampleInput))
	})

	t.Run("missing row", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectExec("UPDATE books").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), 3, sampleInput), store.ErrBookNotFound)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectExec("UPDATE books").WillReturnError(newPgError("23505", "books_isbn_key"))

		assert.ErrorIs(t, s.Update(context.Background(), 3, sampleInput), store.ErrISBNExists)
	})
}

func TestPostgresBookStore_Delete(t *testing.T) {
	t.Parallel()

	s, mock := newMockBookStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM books").
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Delete(context.Background(), 4))
	assert.ErrorIs(t, s.Delete(context.Background(), 4), store.ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBookStore_InTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO books").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectCommit()

		err := s.InTx(context.Background(), func(ctx context.Context, tx store.BookStore) error {
			exists, err := tx.ExistsByISBN(ctx, sampleInput.ISBN)
			if err != nil || exists {
				return errors.New("unexpected")
			}
			_, err = tx.Create(ctx, sampleInput)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockBookStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO books").WillReturnError(newPgError("23505", "books_isbn_key"))
		mock.ExpectRollback()

		err := s.InTx(context.Background(), func(ctx context.Context, tx store.BookStore) error {
			_, err := tx.Create(ctx, sampleInput)
			return err
		})
		assert.ErrorIs(t, err, store.ErrISBNExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
