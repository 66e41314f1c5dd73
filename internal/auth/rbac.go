package auth

import (
	"net/http"

	"github.com/sudmegaphone/backend/internal/account"
	"github.com/sudmegaphone/backend/internal/models"
)

// RequireRole gates a route group on the authenticated user's role.
// Admins pass every check.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := account.UserFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if user.Role != role && user.Role != models.RoleAdmin {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin restricts template configuration and user administration.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}
