package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

const (
	topUpNote    = "Wallet top-up"
	withdrawNote = "Wallet withdrawal"
)

// Snapshot is the owner-facing view of a wallet.
type Snapshot struct {
	WalletID      uuid.UUID
	AccountNumber string
	BankName      string
	Balance       decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Service exposes the wallet operations available to its owner. Every
// mutation goes through the ledger so the balance and the transaction log
// stay consistent.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds a wallet service on top of a ledger.
func NewService(backend ledger.Ledger) *Service {
	return &Service{ledger: backend}
}

// Me returns the caller's wallet snapshot.
func (s *Service) Me(ctx context.Context, ownerID uuid.UUID) (Snapshot, error) {
	w, err := s.ledger.WalletByOwner(ctx, ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		WalletID:      w.ID,
		AccountNumber: w.AccountNumber,
		BankName:      w.BankName,
		Balance:       w.Balance,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}, nil
}

// TopUp credits the caller's wallet.
func (s *Service) TopUp(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) (ledger.Transaction, error) {
	w, err := s.ledger.WalletByOwner(ctx, ownerID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return s.ledger.Credit(ctx, w.ID, amount, ledger.KindTopUp, topUpNote, nil)
}

// Withdraw debits the caller's wallet.
func (s *Service) Withdraw(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) (ledger.Transaction, error) {
	w, err := s.ledger.WalletByOwner(ctx, ownerID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return s.ledger.Debit(ctx, w.ID, amount, ledger.KindWithdraw, withdrawNote, nil)
}

// Transactions lists the caller's transaction history, newest first.
func (s *Service) Transactions(ctx context.Context, ownerID uuid.UUID) ([]ledger.Transaction, error) {
	w, err := s.ledger.WalletByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.ledger.Transactions(ctx, w.ID)
}
