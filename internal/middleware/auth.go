package middleware

import (
	"errors"

	"parknet-backend/internal/domain"
	"parknet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) *SessionUser {
	u, _ := c.Locals(userLocal).(*SessionUser)
	return u
}

var errNoSession = errors.New("No session user")

// ResidentID returns the session user's resident ID.
func ResidentID(c *fiber.Ctx) (uuid.UUID, error) {
	u := GetUser(c)
	if u == nil {
		return uuid.Nil, errNoSession
	}
	return u.ID()
}

// IsAdmin reports whether the session user is an administrator.
func IsAdmin(c *fiber.Ctx) bool {
	u := GetUser(c)
	return u != nil && u.Role == domain.RoleAdmin
}
