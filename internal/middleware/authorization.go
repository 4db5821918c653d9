package middleware

import (
	"net/http"
	"slices"

	"sales-admin/internal/domain"

	"go.uber.org/zap"
)

// RequireAdmin only lets ADMIN users through
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.Role{domain.RoleAdmin}, logger)
}

// RequireRole ensures the user has one of the allowed roles
func RequireRole(allowedRoles []domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			if !slices.Contains(allowedRoles, domain.Role(role)) {
				logger.Warn("User role not authorized",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
