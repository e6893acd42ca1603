package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Metrics is the operational summary shown on the admin dashboard.
type Metrics struct {
	TotalWallets int64           `json:"total_wallets"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	CountToday   int64           `json:"transactions_today"`
	VolumeToday  decimal.Decimal `json:"volume_today"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

// Source computes metrics from the system of record.
type Source interface {
	Collect(ctx context.Context, now time.Time) (Metrics, error)
}
