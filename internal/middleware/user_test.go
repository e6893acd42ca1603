package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func TestUserContextParsesHeader(t *testing.T) {
	app := fiber.New()
	app.Use(UserContext())

	var seen uuid.UUID
	app.Get("/me", func(c *fiber.Ctx) error {
		seen, _ = c.Locals(userIDLocal).(uuid.UUID)
		return c.SendStatus(fiber.StatusOK)
	})

	want := uuid.New()
	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(userIDHeader, want.String())

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	if seen != want {
		t.Fatalf("expected %s in locals, got %s", want, seen)
	}
}

func TestUserContextRejectsMissingOrMalformedHeader(t *testing.T) {
	app := fiber.New()
	app.Use(UserContext())
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for _, header := range []string{"", "not-a-uuid"} {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(userIDHeader, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, resp.StatusCode)
		}
	}
}
