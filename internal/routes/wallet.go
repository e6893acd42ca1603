package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padi-pay/padi_pay/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints. Mutations go on the
// idempotent router so replayed requests cannot double-post.
func RegisterWalletRoutes(r, idempotent fiber.Router, h *wallet.Handler) {
	r.Get("/wallet/me", h.Me)
	r.Get("/wallet/transactions", h.Transactions)

	idempotent.Post("/wallet/topup", h.TopUp)
	idempotent.Post("/wallet/withdraw", h.Withdraw)
}
