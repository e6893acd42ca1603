package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type walletRecord struct {
	mu           sync.Mutex
	wallet       Wallet
	transactions []Transaction
}

type inMemoryLedger struct {
	mu          sync.RWMutex
	wallets     map[uuid.UUID]*walletRecord
	byOwner     map[uuid.UUID]uuid.UUID
	byAccount   map[string]uuid.UUID
	invalidator Invalidator
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit
// tests and dev mode. Each wallet carries its own mutex, matching the
// per-row locking of the Postgres backend: mutations on one wallet
// serialize, different wallets never contend.
func NewInMemory(invalidator Invalidator) Ledger {
	return &inMemoryLedger{
		wallets:     make(map[uuid.UUID]*walletRecord),
		byOwner:     make(map[uuid.UUID]uuid.UUID),
		byAccount:   make(map[string]uuid.UUID),
		invalidator: invalidator,
	}
}

func (l *inMemoryLedger) CreateWallet(_ context.Context, w Wallet) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.wallets[w.ID]; exists {
		return errors.New("wallet exists")
	}
	l.wallets[w.ID] = &walletRecord{wallet: w}
	l.byOwner[w.OwnerID] = w.ID
	l.byAccount[w.AccountNumber] = w.ID
	return nil
}

func (l *inMemoryLedger) WalletByOwner(_ context.Context, ownerID uuid.UUID) (Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byOwner[ownerID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	rec := l.wallets[id]
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.wallet, nil
}

func (l *inMemoryLedger) WalletByAccountNumber(_ context.Context, accountNumber string) (Wallet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byAccount[accountNumber]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	rec := l.wallets[id]
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.wallet, nil
}

func (l *inMemoryLedger) Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID) (Transaction, error) {
	return l.mutate(ctx, walletID, amount, kind, note, bundleRef, false)
}

func (l *inMemoryLedger) Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID) (Transaction, error) {
	return l.mutate(ctx, walletID, amount, kind, note, bundleRef, true)
}

func (l *inMemoryLedger) mutate(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind, note string, bundleRef *uuid.UUID, debit bool) (Transaction, error) {
	if amount.Sign() <= 0 {
		return Transaction{}, ErrInvalidAmount
	}

	rec, err := l.record(walletID)
	if err != nil {
		return Transaction{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if debit {
		if rec.wallet.Balance.LessThan(amount) {
			return Transaction{}, ErrInsufficientFunds
		}
		rec.wallet.Balance = rec.wallet.Balance.Sub(amount)
	} else {
		rec.wallet.Balance = rec.wallet.Balance.Add(amount)
	}

	now := time.Now().UTC()
	rec.wallet.UpdatedAt = now
	txn := Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Kind:        kind,
		Amount:      amount,
		BundleID:    bundleRef,
		Description: note,
		CreatedAt:   now,
	}
	rec.transactions = append(rec.transactions, txn)

	if l.invalidator != nil {
		l.invalidator.Invalidate(ctx)
	}
	return txn, nil
}

func (l *inMemoryLedger) Transactions(_ context.Context, walletID uuid.UUID) ([]Transaction, error) {
	rec, err := l.record(walletID)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	// Newest first.
	out := make([]Transaction, 0, len(rec.transactions))
	for i := len(rec.transactions) - 1; i >= 0; i-- {
		out = append(out, rec.transactions[i])
	}
	return out, nil
}

func (l *inMemoryLedger) record(walletID uuid.UUID) (*walletRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.wallets[walletID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	return rec, nil
}
