package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger persists wallets and their transaction log in PostgreSQL.
// Each mutation locks the wallet row for the duration of the
// read-modify-write, so concurrent mutations on one wallet serialize while
// other wallets stay unaffected.
type PostgresLedger struct {
	db          *pgxpool.Pool
	invalidator Invalidator
	logger      *slog.Logger
}

// NewPostgresLedger constructs a Postgres-backed ledger. The invalidator may
// be nil when no caches depend on ledger state.
func NewPostgresLedger(db *pgxpool.Pool, invalidator Invalidator, logger *slog.Logger) *PostgresLedger {
	return &PostgresLedger{db: db, invalidator: invalidator, logger: logger}
}

// CreateWallet inserts a wallet record with a zero opening balance.
func (l *PostgresLedger) CreateWallet(ctx context.Context, w Wallet) error {
	_, err := l.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, account_number, bank_name, balance, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.ID, w.OwnerID, w.AccountNumber, w.BankName, w.Balance, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	l.invalidate(ctx)
	return nil
}

// WalletByOwner fetches the wallet belonging to the given user.
func (l *PostgresLedger) WalletByOwner(ctx context.Context, ownerID uuid.UUID) (Wallet, error) {
	return l.scanWallet(l.db.QueryRow(ctx, walletSelect+` WHERE owner_id = $1`, ownerID))
}

// WalletByAccountNumber fetches a wallet by its virtual account number.
func (l *PostgresLedger) WalletByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error) {
	return l.scanWallet(l.db.QueryRow(ctx, walletSelect+` WHERE account_number = $1`, accountNumber))
}

const walletSelect = `SELECT id, owner_id, account_number, bank_name, balance, created_at, updated_at FROM wallets`

func (l *PostgresLedger) scanWallet(row pgx.Row) (Wallet, error) {
	var w Wallet
	err := row.Scan(&w.ID, &w.OwnerID, &w.AccountNumber, &w.BankName, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}

// Credit atomically increments the wallet balance and appends the matching
// transaction row.
func (l *PostgresLedger) Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID) (Transaction, error) {
	return l.mutate(ctx, walletID, amount, kind, note, bundleRef, false)
}

// Debit atomically decrements the wallet balance, failing with
// ErrInsufficientFunds when the balance cannot cover the amount. Balance and
// transaction log are left untouched on failure.
func (l *PostgresLedger) Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID) (Transaction, error) {
	return l.mutate(ctx, walletID, amount, kind, note, bundleRef, true)
}

func (l *PostgresLedger) mutate(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID, debit bool) (Transaction, error) {
	if amount.Sign() <= 0 {
		return Transaction{}, ErrInvalidAmount
	}

	txn, err := l.mutateOnce(ctx, walletID, amount, kind, note, bundleRef, debit)
	if isSerializationFailure(err) {
		// One retry against fresh state; a second abort surfaces as
		// ErrLedgerUnavailable.
		l.logger.Warn("ledger mutation aborted, retrying", "wallet_id", walletID.String(), "error", err)
		txn, err = l.mutateOnce(ctx, walletID, amount, kind, note, bundleRef, debit)
		if isSerializationFailure(err) {
			l.logger.Error("ledger mutation failed after retry", "wallet_id", walletID.String(), "error", err)
			return Transaction{}, ErrLedgerUnavailable
		}
	}
	if err != nil {
		return Transaction{}, err
	}

	l.invalidate(ctx)
	return txn, nil
}

func (l *PostgresLedger) mutateOnce(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID, debit bool) (Transaction, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT balance FROM wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrWalletNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("lock wallet: %w", err)
	}

	if debit {
		if balance.LessThan(amount) {
			return Transaction{}, ErrInsufficientFunds
		}
		balance = balance.Sub(amount)
	} else {
		balance = balance.Add(amount)
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`, balance, now, walletID); err != nil {
		return Transaction{}, fmt.Errorf("update balance: %w", err)
	}

	txn := Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Kind:        kind,
		Amount:      amount,
		BundleID:    bundleRef,
		Description: note,
		CreatedAt:   now,
	}
	if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, wallet_id, kind, amount, bundle_id, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txn.ID, txn.WalletID, txn.Kind, txn.Amount, txn.BundleID, txn.Description, txn.CreatedAt); err != nil {
		return Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, fmt.Errorf("commit ledger tx: %w", err)
	}

	return txn, nil
}

// Transactions lists the wallet's mutation history, newest first.
func (l *PostgresLedger) Transactions(ctx context.Context, walletID uuid.UUID) ([]Transaction, error) {
	rows, err := l.db.Query(ctx, `SELECT id, wallet_id, kind, amount, bundle_id, description, created_at
        FROM transactions WHERE wallet_id = $1 ORDER BY created_at DESC`, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var txn Transaction
		if err := rows.Scan(&txn.ID, &txn.WalletID, &txn.Kind, &txn.Amount, &txn.BundleID, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.CreatedAt = txn.CreatedAt.UTC()
		out = append(out, txn)
	}
	return out, rows.Err()
}

func (l *PostgresLedger) invalidate(ctx context.Context) {
	if l.invalidator != nil {
		l.invalidator.Invalidate(ctx)
	}
}

// isSerializationFailure reports whether the error is a deadlock,
// serialization abort, or lock wait timeout that is safe to retry with the
// operation re-executed.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	default:
		return false
	}
}
