package rbac

import (
	"log/slog"
	"net/http"

	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// Middleware wires the authorization decision point into HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// Require ensures the caller's role holds the permission token. A missing
// identity or a negative answer produces a client-visible 403, never a
// silent pass-through.
func (m Middleware) Require(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if !m.Resolver.HasPermission(identity.RoleID, token) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("principal_id", identity.PrincipalID),
						slog.Int64("role_id", identity.RoleID),
						slog.String("permission", token),
					)
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
