package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-service/internal/domain"
	apperrors "github.com/spec-kit/admin-service/pkg/util"
)

// IsAdmin reports whether the role is exactly the admin role.
func IsAdmin(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// HasRole reports whether userRole satisfies requiredRole. Admin satisfies
// every requirement; user satisfies only the user requirement.
func HasRole(userRole, requiredRole domain.Role) bool {
	if requiredRole == domain.RoleAdmin {
		return userRole == domain.RoleAdmin
	}
	return userRole == domain.RoleUser || userRole == domain.RoleAdmin
}

// RequireRole gates a route on the session role set by the auth middleware.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !HasRole(session.Role, required) {
			return apperrors.NewInsufficientPermissions("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin gates a route on the admin role.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
