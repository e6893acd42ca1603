package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedBalance is a test helper that sets the balance of a wallet when using
// the in-memory ledger. It bypasses the transaction log on purpose: seeded
// funds represent pre-existing state, not mutations under test.
func SeedBalance(l Ledger, walletID uuid.UUID, balance decimal.Decimal) {
	if mem, ok := l.(*inMemoryLedger); ok {
		if rec, err := mem.record(walletID); err == nil {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.wallet.Balance = balance
		}
	}
}
