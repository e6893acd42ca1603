package marketplace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

// Service settles bundle purchases against the wallet ledger.
type Service struct {
	catalog Repository
	ledger  ledger.Ledger
}

// NewService builds a marketplace service.
func NewService(catalog Repository, backend ledger.Ledger) *Service {
	return &Service{catalog: catalog, ledger: backend}
}

// Products lists the purchasable catalog.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.catalog.ListActive(ctx)
}

// Settle debits the buyer's wallet for the product's fixed price. The
// purchase-kind ledger transaction carrying the bundle reference is the
// purchase record, so the debit and the record share one atomic boundary:
// neither can exist without the other. ErrInsufficientFunds propagates
// unchanged with no side effects.
func (s *Service) Settle(ctx context.Context, userID, productID uuid.UUID) (ledger.Transaction, error) {
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if !product.Active {
		return ledger.Transaction{}, ErrProductNotFound
	}

	w, err := s.ledger.WalletByOwner(ctx, userID)
	if err != nil {
		return ledger.Transaction{}, err
	}

	note := fmt.Sprintf("Purchased %s", product.Name)
	return s.ledger.Debit(ctx, w.ID, product.Price, ledger.KindPurchase, note, &product.ID)
}

// Purchases lists the buyer's settled purchases, newest first.
func (s *Service) Purchases(ctx context.Context, userID uuid.UUID) ([]ledger.Transaction, error) {
	w, err := s.ledger.WalletByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	txns, err := s.ledger.Transactions(ctx, w.ID)
	if err != nil {
		return nil, err
	}

	var purchases []ledger.Transaction
	for _, txn := range txns {
		if txn.Kind == ledger.KindPurchase {
			purchases = append(purchases, txn)
		}
	}
	return purchases, nil
}
