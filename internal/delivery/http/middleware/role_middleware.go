package middleware

import (
	"net/http"

	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/pkg/response"
)

// RequireRole checks that the authenticated user holds one of the allowed
// roles. Role is read from context (set by AuthMiddleware from JWT claims).
func RequireRole(allowedRoles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireReception limits appointment management to the front desk (and
// admins).
func RequireReception(next http.Handler) http.Handler {
	return RequireRole(entity.RoleReceptionist, entity.RoleAdmin)(next)
}

// RequireDoctor limits doctor notification endpoints to doctors.
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor)(next)
}
