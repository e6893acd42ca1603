package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padi-pay/padi_pay/internal/marketplace"
)

// RegisterMarketplaceRoutes wires the catalog and purchase endpoints.
func RegisterMarketplaceRoutes(r, idempotent fiber.Router, h *marketplace.Handler) {
	r.Get("/products", h.Products)
	r.Get("/purchases", h.Purchases)

	idempotent.Post("/purchases", h.Purchase)
}
