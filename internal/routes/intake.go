package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padi-pay/padi_pay/internal/intake"
)

// RegisterIntakeRoutes wires the provider webhook. POST only; anything else
// routes to 405 via fiber's method matching.
func RegisterIntakeRoutes(r fiber.Router, h *intake.Handler) {
	r.Post("/webhooks/provider", h.Receive)
}
