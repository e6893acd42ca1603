package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	userIDHeader = "X-User-ID"
	userIDLocal  = "user_id"
)

// UserContext resolves the calling user from the X-User-ID header and stores
// the parsed identifier in locals. Routes behind it can assume a valid user
// identifier is present.
func UserContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(userIDHeader)
		if raw == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing X-User-ID header")
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid X-User-ID header")
		}
		c.Locals(userIDLocal, userID)
		return c.Next()
	}
}
