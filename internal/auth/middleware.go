package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admin-service/internal/domain"
	apperrors "github.com/spec-kit/admin-service/pkg/util"
)

const sessionKey = "auth_session"

// Middleware validates bearer tokens and stores the session on the request.
type Middleware struct {
	authorizer *SessionAuthorizer
}

// NewMiddleware constructs middleware.
func NewMiddleware(authorizer *SessionAuthorizer) *Middleware {
	return &Middleware{authorizer: authorizer}
}

// Handle enforces authentication for protected routes. A missing or
// malformed header maps to UNAUTHORIZED; any rejected token maps to
// INVALID_TOKEN.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	result := m.authorizer.ValidateToken(c.Context(), parts[1])
	if !result.IsValid() {
		return apperrors.NewInvalidToken(result.Reason)
	}

	c.Locals(sessionKey, result.Session)
	return c.Next()
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.SessionData, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.SessionData)
	return session, ok
}
