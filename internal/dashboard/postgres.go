package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource computes dashboard metrics straight from the wallet and
// transaction tables.
type PostgresSource struct {
	db *pgxpool.Pool
}

// NewPostgresSource builds a metrics source backed by Postgres.
func NewPostgresSource(db *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{db: db}
}

// Collect runs the aggregate queries. "Today" is the UTC day containing now.
func (s *PostgresSource) Collect(ctx context.Context, now time.Time) (Metrics, error) {
	m := Metrics{GeneratedAt: now}

	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(balance), 0) FROM wallets`,
	).Scan(&m.TotalWallets, &m.TotalBalance)
	if err != nil {
		return Metrics{}, fmt.Errorf("aggregate wallets: %w", err)
	}

	dayStart := now.Truncate(24 * time.Hour)
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0)
		   FROM transactions
		  WHERE created_at >= $1 AND created_at < $2`,
		dayStart, dayStart.Add(24*time.Hour),
	).Scan(&m.CountToday, &m.VolumeToday)
	if err != nil {
		return Metrics{}, fmt.Errorf("aggregate transactions: %w", err)
	}

	return m, nil
}
