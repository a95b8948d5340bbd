package auth

import (
	"net/http"
	"strings"

	"github.com/vantage-dms/vantage-dms/internal/platform/httpx"
	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// BearerAuth verifies the Authorization header and attaches the caller's
// identity to the request context. Requests without a valid token get 401.
func BearerAuth(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			claims, err := issuer.Verify(raw)
			if err != nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{
				PrincipalID: claims.PrincipalID,
				RoleID:      claims.RoleID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
