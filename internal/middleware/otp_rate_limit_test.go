package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestOTPRateLimitBlocksAfterBudget(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Use(OTPRateLimit(cache, 3))
	app.Post("/otp/request", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(phone string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/otp/request", strings.NewReader(`{"phone":"`+phone+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 3; i++ {
		if status := send("+2348012345678"); status != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, status)
		}
	}
	if status := send("+2348012345678"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after budget, got %d", status)
	}

	// Another identifier has its own counter.
	if status := send("+2348098765432"); status != fiber.StatusOK {
		t.Fatalf("unrelated identifier must not be limited, got %d", status)
	}
}

func TestOTPRateLimitWithoutRedisPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(OTPRateLimit(nil, 1))
	app.Post("/otp/request", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/otp/request", strings.NewReader(`{"phone":"+2348012345678"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected pass-through, got %d", resp.StatusCode)
		}
	}
}
