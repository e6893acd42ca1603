package wallet

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

// Handler exposes wallet endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type transactionResponse struct {
	TransactionID string  `json:"transaction_id"`
	Kind          string  `json:"kind"`
	Amount        string  `json:"amount"`
	Note          string  `json:"note"`
	BundleID      *string `json:"bundle_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toTransactionResponse(txn ledger.Transaction) transactionResponse {
	resp := transactionResponse{
		TransactionID: txn.ID.String(),
		Kind:          string(txn.Kind),
		Amount:        txn.Amount.StringFixed(2),
		Note:          txn.Description,
		CreatedAt:     txn.CreatedAt.UTC().Format(time.RFC3339),
	}
	if txn.BundleID != nil {
		id := txn.BundleID.String()
		resp.BundleID = &id
	}
	return resp
}

// Me returns the caller's wallet snapshot.
func (h *Handler) Me(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing or invalid user id")
	}
	snap, err := h.service.Me(c.UserContext(), ownerID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id":      snap.WalletID.String(),
		"account_number": snap.AccountNumber,
		"bank_name":      snap.BankName,
		"balance":        snap.Balance.StringFixed(2),
		"created_at":     snap.CreatedAt,
		"updated_at":     snap.UpdatedAt,
	})
}

// TopUp credits the caller's wallet.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	return h.mutate(c, h.service.TopUp)
}

// Withdraw debits the caller's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.mutate(c, h.service.Withdraw)
}

// Transactions lists the caller's transaction history, newest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing or invalid user id")
	}
	txns, err := h.service.Transactions(c.UserContext(), ownerID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, toTransactionResponse(txn))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

type mutationFunc func(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) (ledger.Transaction, error)

func (h *Handler) mutate(c *fiber.Ctx, apply mutationFunc) error {
	ownerID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing or invalid user id")
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "amount must be a decimal string")
	}

	txn, err := apply(c.UserContext(), ownerID, amount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
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
	return c.Status(http.StatusCreated).JSON(toTransactionResponse(txn))
}
