package intake

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

// SignatureHeader carries the provider's hex HMAC-SHA512 digest of the raw
// request body.
const SignatureHeader = "provider-signature"

// Handler exposes the provider webhook endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a webhook handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Receive processes one provider notification. The raw body is used for
// signature verification, so it must not be re-encoded before Handle sees it.
func (h *Handler) Receive(c *fiber.Ctx) error {
	result, err := h.service.Handle(c.UserContext(), c.Body(), c.Get(SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"status": "unauthorized"})
		case errors.Is(err, ErrAccountNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"status": "wallet not found"})
		case errors.Is(err, ledger.ErrLedgerUnavailable):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	switch result {
	case ResultCredited:
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "wallet credited"})
	default:
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}
}
