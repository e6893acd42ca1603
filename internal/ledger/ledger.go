package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount occurs when a mutation is requested for a zero or
	// negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when a debit exceeds the wallet's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound indicates the referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrLedgerUnavailable indicates a transient storage failure that persisted
	// through the internal retry.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)

const (
	// KindTopUp marks a credit that adds external money to a wallet.
	KindTopUp = "topup"
	// KindWithdraw marks a debit that moves money out of a wallet.
	KindWithdraw = "withdraw"
	// KindPurchase marks a debit that pays for a catalog bundle.
	KindPurchase = "purchase"
)

// Wallet is the balance-bearing account record, one per user.
type Wallet struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	AccountNumber string
	BankName      string
	Balance       decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction is the immutable record of a single balance mutation.
type Transaction struct {
	ID          uuid.UUID
	WalletID    uuid.UUID
	Kind        string
	Amount      decimal.Decimal
	BundleID    *uuid.UUID
	Description string
	CreatedAt   time.Time
}

// Invalidator is called after every committed balance mutation so cached
// aggregates never outlive the data they summarize. The ledger makes the call
// itself; callers cannot forget it.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
// Credit and Debit serialize concurrent mutations on the same wallet;
// mutations on different wallets proceed independently. Neither operation
// deduplicates: idempotency is the caller's responsibility.
type Ledger interface {
	CreateWallet(ctx context.Context, w Wallet) error
	WalletByOwner(ctx context.Context, ownerID uuid.UUID) (Wallet, error)
	WalletByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error)
	Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID) (Transaction, error)
	Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID) (Transaction, error)
	Transactions(ctx context.Context, walletID uuid.UUID) ([]Transaction, error)
}
