package auth

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	tokenKey   = "jwt"
	sessionKey = "session"
)

var (
	ErrUserRequired = errors.New("userId is required")
	ErrForbidden    = errors.New("not allowed to act for another user")
	ErrBadClaims    = errors.New("token has no subject")
)

// Session is the caller identity for one request. It is built once by
// Middleware from the identity provider's token and read by handlers.
type Session struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// WithSession attaches s to the request.
func WithSession(c *fiber.Ctx, s Session) {
	c.Locals(sessionKey, s)
}

// FromCtx returns the request's session; ok is false for anonymous requests.
func FromCtx(c *fiber.Ctx) (Session, bool) {
	s, ok := c.Locals(sessionKey).(Session)
	return s, ok
}

// ResolveUserID decides which user a cart or order request acts for.
// Anonymous callers must name the user. Signed-in callers default to
// themselves and only admins may name somebody else.
func ResolveUserID(c *fiber.Ctx, claimed string) (string, error) {
	s, ok := FromCtx(c)
	if !ok {
		if claimed == "" {
			return "", ErrUserRequired
		}
		return claimed, nil
	}
	if claimed == "" || claimed == s.UserID {
		return s.UserID, nil
	}
	if s.IsAdmin() {
		return claimed, nil
	}
	return "", ErrForbidden
}

func sessionFromToken(tok *jwt.Token) (Session, error) {
	if tok == nil {
		return Session{}, ErrBadClaims
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrBadClaims
	}

	s := Session{Role: RoleUser}
	for _, key := range []string{"sub", "user_id"} {
		if id := claimString(claims[key]); id != "" {
			s.UserID = id
			break
		}
	}
	if s.UserID == "" {
		return Session{}, ErrBadClaims
	}
	if role, _ := claims["role"].(string); role == RoleAdmin {
		s.Role = RoleAdmin
	}
	return s, nil
}

func claimString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
