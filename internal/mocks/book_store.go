package mocks

import (
	"context"
	"database/sql"
	"maps"
	"slices"
	"sync"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// MockBookStore is an in-memory store.BookStore. It enforces ISBN
// uniqueness like the database constraint does, and InTx calls are
// serialized and rolled back on error.
type MockBookStore struct {
	// Errors returned by the matching method when set
	ListError   error
	GetError    error
	ExistsError error
	CreateError error
	UpdateError error
	DeleteError error

	// ExistsByISBNFn overrides the default lookup when set, e.g. to
	// simulate a concurrent insert slipping past the existence check
	ExistsByISBNFn func(ctx context.Context, isbn string) (bool, error)

	// Call counters for verifying storage was (not) touched
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	txMu   sync.Mutex
	mu     sync.Mutex
	books  map[int64]domain.Book
	nextID int64
}

// NewMockBookStore creates a store pre-populated with books in order.
func NewMockBookStore(books ...domain.BookInput) *MockBookStore {
	m := &MockBookStore{books: make(map[int64]domain.Book)}
	for _, in := range books {
		m.nextID++
		m.books[m.nextID] = in.ToBook(m.nextID)
	}
	return m
}

var _ store.BookStore = (*MockBookStore)(nil)

// List implements store.BookStore.
func (m *MockBookStore) List(ctx context.Context) ([]domain.Book, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := slices.Sorted(maps.Keys(m.books))
	books := make([]domain.Book, 0, len(ids))
	for _, id := range ids {
		books = append(books, m.books[id])
	}
	return books, nil
}

// GetByID implements store.BookStore.
func (m *MockBookStore) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	return &b, nil
}

// ExistsByISBN implements store.BookStore.
func (m *MockBookStore) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	if m.ExistsByISBNFn != nil {
		return m.ExistsByISBNFn(ctx, isbn)
	}
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isbnTakenLocked(isbn, 0), nil
}

// Create implements store.BookStore.
func (m *MockBookStore) Create(ctx context.Context, in domain.BookInput) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++

	if m.CreateError != nil {
		return 0, m.CreateError
	}
	if m.isbnTakenLocked(in.ISBN, 0) {
		return 0, store.ErrISBNExists
	}
	m.nextID++
	m.books[m.nextID] = in.ToBook(m.nextID)
	return m.nextID, nil
}

// Update implements store.BookStore.
func (m *MockBookStore) Update(ctx context.Context, id int64, in domain.BookInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.books[id]; !ok {
		return store.ErrBookNotFound
	}
	if m.isbnTakenLocked(in.ISBN, id) {
		return store.ErrISBNExists
	}
	m.books[id] = in.ToBook(id)
	return nil
}

// Delete implements store.BookStore.
func (m *MockBookStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++

	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.books[id]; !ok {
		return store.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

// InTx implements store.BookStore. Changes made by fn are discarded when
// it returns an error.
func (m *MockBookStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.BookStore) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot, nextID := maps.Clone(m.books), m.nextID
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.books, m.nextID = snapshot, nextID
		m.mu.Unlock()
		return err
	}
	return nil
}

// WithTx implements store.BookStore.
func (m *MockBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return m
}

// Len returns the number of stored books.
func (m *MockBookStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.books)
}

func (m *MockBookStore) isbnTakenLocked(isbn string, exceptID int64) bool {
	for id, b := range m.books {
		if id != exceptID && b.ISBN == isbn {
			return true
		}
	}
	return false
}
