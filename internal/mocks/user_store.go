package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// GetByUsernameFn overrides the default map lookup when set
	GetByUsernameFn func(ctx context.Context, username string) (*domain.User, error)

	// GetByUsernameError is returned for every lookup when set
	GetByUsernameError error

	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserStore creates a new mock store holding users.
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{users: make(map[string]*domain.User)}
	for _, u := range users {
		m.Put(u)
	}
	return m
}

// Put adds or replaces a user.
func (m *MockUserStore) Put(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Username] = user
}

// GetByUsername implements the UserStore interface
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	if m.GetByUsernameError != nil {
		return nil, m.GetByUsernameError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	copied.Roles = append([]domain.Role(nil), user.Roles...)
	return &copied, nil
}

// WithTx implements the UserStore interface for transaction support
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	// For mock purposes, just return the same mock
	return m
}
