package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/chatventas/commerce-service/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// SessionMiddleware validates bearer session tokens on protected routes.
type SessionMiddleware struct {
	tokens *TokenManager
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens}
}

// Handle enforces a valid session token and stashes the claims.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseSessionToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}

	c.Locals(sessionKey, claims)
	return c.Next()
}

// SessionFromContext retrieves the validated session claims.
func SessionFromContext(c *fiber.Ctx) (*SessionClaims, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*SessionClaims)
	return claims, ok
}
