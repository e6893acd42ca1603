package dashboard

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a dashboard HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Metrics returns the operational summary.
func (h *Handler) Metrics(c *fiber.Ctx) error {
	m, err := h.service.Metrics(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(m)
}
