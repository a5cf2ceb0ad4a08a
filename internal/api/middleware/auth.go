package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/redact"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// Client-facing authentication failures.
const (
	MsgMissingToken = "Authorization header with Bearer token is required"
	MsgInvalidToken = "Invalid or expired token"

	bearerPrefix = "Bearer "
)

// PublicRoute matches requests that skip authentication. An empty Method
// matches any method. A Path ending in "/" matches by prefix, anything
// else must match exactly.
type PublicRoute struct {
	Method string
	Path   string
}

// DefaultPublicRoutes are login, documentation, health and metrics.
var DefaultPublicRoutes = []PublicRoute{
	{Method: http.MethodPost, Path: "/auth/login"},
	{Path: "/docs"},
	{Path: "/docs/"},
	{Path: "/health"},
	{Path: "/health/"},
	{Path: "/metrics"},
}

func (p PublicRoute) matches(r *http.Request) bool {
	if p.Method != "" && p.Method != r.Method {
		return false
	}
	if strings.HasSuffix(p.Path, "/") {
		return strings.HasPrefix(r.URL.Path, p.Path)
	}
	return r.URL.Path == p.Path
}

// AccessGuard authenticates every non-public request with a bearer token
// and attaches the caller's domain.Principal to the request context.
type AccessGuard struct {
	codec  auth.TokenCodec
	users  store.UserStore
	public []PublicRoute
}

// NewAccessGuard creates an AccessGuard. With no public routes given,
// DefaultPublicRoutes is used.
func NewAccessGuard(codec auth.TokenCodec, users store.UserStore, public ...PublicRoute) *AccessGuard {
	if len(public) == 0 {
		public = DefaultPublicRoutes
	}
	return &AccessGuard{codec: codec, users: users, public: public}
}

// Authenticate is the middleware.
func (g *AccessGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range g.public {
			if p.matches(r) {
				next.ServeHTTP(w, r)
				return
			}
		}

		log := logger.FromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) || strings.TrimSpace(authHeader[len(bearerPrefix):]) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing Token", MsgMissingToken)
			return
		}
		token := strings.TrimSpace(authHeader[len(bearerPrefix):])

		claims, err := g.codec.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				log.Error("unexpected token verification failure", slog.String("error", redact.Error(err)))
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Unauthorized", MsgInvalidToken, err)
			return
		}

		user, err := g.users.GetByUsername(r.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, store.ErrUserNotFound) {
				log.Error("failed to resolve token subject", slog.String("error", redact.Error(err)))
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Unauthorized", MsgInvalidToken, err)
			return
		}

		principal := domain.Principal{Username: user.Username, Roles: user.Roles}
		ctx := WithPrincipal(r.Context(), principal)
		ctx = logger.WithLogger(ctx, log.With(slog.String("username", principal.Username)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
