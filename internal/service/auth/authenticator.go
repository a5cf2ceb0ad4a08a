package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator exchanges a username and password for a signed token.
type Authenticator struct {
	users    store.UserStore
	verifier PasswordVerifier
	codec    TokenCodec
	ttl      time.Duration
	logger   *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator creates an Authenticator issuing tokens valid for ttl.
func NewAuthenticator(
	users store.UserStore,
	verifier PasswordVerifier,
	codec TokenCodec,
	ttl time.Duration,
	logger *slog.Logger,
) (*Authenticator, error) {
	if users == nil {
		return nil, errors.New("users cannot be nil")
	}
	if verifier == nil {
		return nil, errors.New("verifier cannot be nil")
	}
	if codec == nil {
		return nil, errors.New("codec cannot be nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Authenticator{
		users:    users,
		verifier: verifier,
		codec:    codec,
		ttl:      ttl,
		logger:   logger.With(slog.String("component", "authenticator")),
	}, nil
}

// Authenticate verifies the credentials and issues a token for username.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*Token, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Burn a comparison so response time does not reveal whether the user exists.
			_ = a.verifier.Compare(a.dummy(), password)
			log.Debug("login rejected: unknown user", slog.String("username", username))
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", err.Error()), slog.String("username", username))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := a.verifier.Compare(user.PasswordHash, password); err != nil {
		log.Debug("login rejected: password mismatch", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := a.codec.Issue(ctx, user.Username, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info("user authenticated", slog.String("username", username))
	return token, nil
}

// dummy returns a hash made by the configured verifier when it can hash,
// so the unknown-user comparison costs the same as a real one.
func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		const plain = "not-a-real-password"
		if h, ok := a.verifier.(PasswordHasher); ok {
			if hash, err := h.Hash(plain); err == nil {
				a.dummyHash = hash
				return
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err == nil {
			a.dummyHash = string(hash)
		}
	})
	return a.dummyHash
}
