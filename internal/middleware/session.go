package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sessions are written by the identity service; this service only reads them.
const (
	SessionCookieName  = "parknet.sid"
	SessionRedisPrefix = "session:"
	SessionMaxAge      = 24 * time.Hour
)

// SessionUser is the shape stored in the session under "user".
type SessionUser struct {
	ResidentID string `json:"resident_id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
}

// ID parses ResidentID.
func (u SessionUser) ID() (uuid.UUID, error) {
	return uuid.Parse(u.ResidentID)
}

// Session loads the session named by the parknet.sid cookie from Redis and
// exposes its user under Locals("user").
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		// Signed cookies look like "s:<id>.<signature>".
		if strings.HasPrefix(sessionID, "s:") {
			sessionID = strings.SplitN(sessionID[2:], ".", 2)[0]
		}
		c.Locals(userLocal, nil)
		if sessionID == "" || rdb == nil {
			return c.Next()
		}

		b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
		if err != nil {
			return c.Next()
		}
		var data struct {
			User *SessionUser `json:"user"`
		}
		if json.Unmarshal(b, &data) == nil && data.User != nil && data.User.ResidentID != "" {
			c.Locals(userLocal, data.User)
		}
		return c.Next()
	}
}

// StoreSession writes a session the way the identity service does.
func StoreSession(ctx context.Context, rdb *redis.Client, sessionID string, user SessionUser) error {
	b, err := json.Marshal(map[string]interface{}{"user": user})
	if err != nil {
		return err
	}
	return rdb.Set(ctx, SessionRedisPrefix+sessionID, b, SessionMaxAge).Err()
}

// SetSessionUser places user in Locals for the rest of the request.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	u := user
	c.Locals(userLocal, &u)
}
