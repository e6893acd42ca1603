package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padi-pay/padi_pay/internal/dashboard"
)

// RegisterDashboardRoutes wires the operational metrics endpoint.
func RegisterDashboardRoutes(r fiber.Router, h *dashboard.Handler) {
	r.Get("/dashboard/metrics", h.Metrics)
}
