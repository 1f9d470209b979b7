package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

// Middleware verifies an optional bearer token and turns its claims into a
// Session. Requests without an Authorization header pass through anonymous;
// a header carrying a bad token is rejected. An empty secret disables
// verification entirely.
func Middleware(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: tokenKey,
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			tok, _ := c.Locals(tokenKey).(*jwt.Token)
			s, err := sessionFromToken(tok)
			if err != nil {
				return httpx.Message(c, fiber.StatusUnauthorized, "invalid token claims")
			}
			WithSession(c, s)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httpx.Message(c, fiber.StatusUnauthorized, "invalid or expired token")
		},
	})
}

// RequireAdmin guards a route group: anonymous callers get 401 and
// signed-in non-admins 403.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := FromCtx(c)
		if !ok {
			return httpx.Message(c, fiber.StatusUnauthorized, "unauthorized")
		}
		if !s.IsAdmin() {
			return httpx.Message(c, fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// RespondUserError maps ResolveUserID failures to HTTP statuses.
func RespondUserError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrForbidden) {
		return httpx.Message(c, fiber.StatusForbidden, err.Error())
	}
	return httpx.Message(c, fiber.StatusBadRequest, err.Error())
}
