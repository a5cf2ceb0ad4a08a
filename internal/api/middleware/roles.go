package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
)

// MsgAccessDenied is returned when the caller lacks every required role.
const MsgAccessDenied = "You do not have permission to access this resource"

// Operation names a guarded API operation, e.g. "books:create".
type Operation string

// Policy maps each operation to the roles allowed to perform it.
type Policy map[Operation][]domain.Role

// RoleGuard enforces a Policy. Operations missing from the policy are denied.
type RoleGuard struct {
	policy Policy
}

// NewRoleGuard creates a RoleGuard for policy.
func NewRoleGuard(policy Policy) *RoleGuard {
	return &RoleGuard{policy: policy}
}

// Allowed reports whether p may perform op.
func (g *RoleGuard) Allowed(op Operation, p domain.Principal) bool {
	roles, ok := g.policy[op]
	if !ok {
		return false
	}
	return p.HasAnyRole(roles...)
}

// Require returns middleware admitting only callers allowed to perform op.
// It must run after AccessGuard.
func (g *RoleGuard) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized", MsgInvalidToken)
				return
			}

			if !g.Allowed(op, principal) {
				logger.FromContext(r.Context()).Debug("access denied",
					slog.String("operation", string(op)),
					slog.String("username", principal.Username),
					slog.Any("roles", principal.Roles))
				shared.RespondWithError(w, r, http.StatusForbidden, "Access Denied", MsgAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
