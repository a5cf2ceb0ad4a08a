package middleware

import (
	"context"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, shared.PrincipalContextKey, p)
}

// PrincipalFrom returns the authenticated caller attached by AccessGuard.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(shared.PrincipalContextKey).(domain.Principal)
	return p, ok
}
