package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/service/auth"
)

// MockTokenCodec implements auth.TokenCodec for testing
type MockTokenCodec struct {
	// IssueFn allows test cases to mock the Issue behavior
	IssueFn func(ctx context.Context, subject string, ttl time.Duration) (*auth.Token, error)

	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token     string
	Err       error
	VerifyErr error
	Claims    *auth.Claims
}

// Issue implements the auth.TokenCodec interface
func (m *MockTokenCodec) Issue(ctx context.Context, subject string, ttl time.Duration) (*auth.Token, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, subject, ttl)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &auth.Token{Value: m.Token, ExpiresAt: time.Now().Add(ttl)}, nil
}

// Verify implements the auth.TokenCodec interface
func (m *MockTokenCodec) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	return m.Claims, nil
}
