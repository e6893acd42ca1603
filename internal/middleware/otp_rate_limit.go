package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// OTPRateLimit caps how often a single caller can request verification codes.
// The counter is keyed by the target identifier (phone or email) from the
// request body, falling back to the client IP. Without Redis, or when Redis
// errors, requests pass through.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		var req struct {
			Phone      string `json:"phone"`
			Identifier string `json:"identifier"`
		}
		_ = c.BodyParser(&req)
		target := strings.TrimSpace(req.Identifier)
		if target == "" {
			target = strings.TrimSpace(req.Phone)
		}
		if target == "" {
			target = c.IP()
		}

		key := "rl:otp:" + target
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}
