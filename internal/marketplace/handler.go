package marketplace

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

// Handler exposes catalog and purchase endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a marketplace HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type productResponse struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	ProductType string `json:"product_type"`
	Provider    string `json:"provider"`
	Value       string `json:"value"`
	Price       string `json:"price"`
}

// Products lists the purchasable catalog.
func (h *Handler) Products(c *fiber.Ctx) error {
	products, err := h.service.Products(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{
			ProductID:   p.ID.String(),
			Name:        p.Name,
			ProductType: p.ProductType,
			Provider:    p.Provider,
			Value:       p.Value.String(),
			Price:       p.Price.StringFixed(2),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"products": out})
}

type purchaseRequest struct {
	ProductID string `json:"product_id"`
}

// Purchase settles a bundle purchase from the caller's wallet.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing or invalid user id")
	}
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid product id")
	}

	txn, err := h.service.Settle(c.UserContext(), userID, productID)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			return fiber.NewError(http.StatusNotFound, "product not found")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		case errors.Is(err, ledger.ErrWalletNotFound):
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		case errors.Is(err, ledger.ErrLedgerUnavailable):
			return fiber.NewError(http.StatusServiceUnavailable, "ledger busy, retry")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction_id": txn.ID.String(),
		"amount":         txn.Amount.StringFixed(2),
		"note":           txn.Description,
		"created_at":     txn.CreatedAt,
	})
}

// Purchases lists the caller's settled purchases, newest first.
func (h *Handler) Purchases(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing or invalid user id")
	}
	purchases, err := h.service.Purchases(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]fiber.Map, 0, len(purchases))
	for _, txn := range purchases {
		entry := fiber.Map{
			"transaction_id": txn.ID.String(),
			"amount":         txn.Amount.StringFixed(2),
			"note":           txn.Description,
			"created_at":     txn.CreatedAt,
		}
		if txn.BundleID != nil {
			entry["product_id"] = txn.BundleID.String()
		}
		out = append(out, entry)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"purchases": out})
}
