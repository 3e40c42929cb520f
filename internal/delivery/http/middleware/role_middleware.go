package middleware

import (
	"net/http"

	"csystem-sip/internal/domain/entity"
	"csystem-sip/internal/session"
	"csystem-sip/pkg/response"
)

// RequireRole creates a middleware that checks if the caller has any of the required roles.
// The session is set by AuthMiddleware from the JWT claims.
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if !sess.HasRole(allowedRoleIDs...) {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits super admins and federation staff
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDSuperAdmin, entity.RoleIDPerpani)(next)
}

// RequireClub admits club accounts
func RequireClub(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDClub)(next)
}

// RequireParent admits parent/guardian accounts
func RequireParent(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDParent)(next)
}

// RequireAdminOrSupplier is used by the order endpoints
func RequireAdminOrSupplier(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDSuperAdmin, entity.RoleIDPerpani, entity.RoleIDSupplier)(next)
}
