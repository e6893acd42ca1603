package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

func newSettlementFixture(t *testing.T, price string) (*Service, ledger.Ledger, ledger.Wallet, Product) {
	t.Helper()
	backend := ledger.NewInMemory(nil)
	now := time.Now().UTC()
	w := ledger.Wallet{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: "3007654321",
		BankName:      "Moniepoint",
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := backend.CreateWallet(context.Background(), w); err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	product := Product{
		ID:          uuid.New(),
		Name:        "MTN 1GB",
		ProductType: TypeData,
		Provider:    "mtn",
		Value:       decimal.NewFromInt(1024),
		Price:       decimal.RequireFromString(price),
		Active:      true,
		CreatedAt:   now,
	}
	svc := NewService(NewMemoryRepository(product), backend)
	return svc, backend, w, product
}

func TestSettleDebitsWalletAndRecordsPurchase(t *testing.T) {
	svc, backend, w, product := newSettlementFixture(t, "250.00")
	ctx := context.Background()
	ledger.SeedBalance(backend, w.ID, decimal.NewFromInt(1000))

	txn, err := svc.Settle(ctx, w.OwnerID, product.ID)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if txn.Kind != ledger.KindPurchase {
		t.Fatalf("expected purchase kind, got %s", txn.Kind)
	}
	if txn.BundleID == nil || *txn.BundleID != product.ID {
		t.Fatalf("expected bundle reference %s, got %v", product.ID, txn.BundleID)
	}
	if txn.Description != "Purchased MTN 1GB" {
		t.Fatalf("unexpected note %q", txn.Description)
	}

	got, _ := backend.WalletByOwner(ctx, w.OwnerID)
	if !got.Balance.Equal(decimal.RequireFromString("750.00")) {
		t.Fatalf("expected balance 750.00, got %s", got.Balance)
	}
}

func TestSettleInsufficientFundsHasNoSideEffects(t *testing.T) {
	svc, backend, w, product := newSettlementFixture(t, "250.00")
	ctx := context.Background()
	ledger.SeedBalance(backend, w.ID, decimal.NewFromInt(100))

	_, err := svc.Settle(ctx, w.OwnerID, product.ID)
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	got, _ := backend.WalletByOwner(ctx, w.OwnerID)
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance changed on failed settlement: %s", got.Balance)
	}
	if purchases, _ := svc.Purchases(ctx, w.OwnerID); len(purchases) != 0 {
		t.Fatalf("purchase recorded without debit: %+v", purchases)
	}
}

func TestSettleUnknownProduct(t *testing.T) {
	svc, _, w, _ := newSettlementFixture(t, "250.00")

	_, err := svc.Settle(context.Background(), w.OwnerID, uuid.New())
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestPurchasesListsOnlyPurchaseKind(t *testing.T) {
	svc, backend, w, product := newSettlementFixture(t, "100.00")
	ctx := context.Background()
	ledger.SeedBalance(backend, w.ID, decimal.NewFromInt(1000))

	if _, err := backend.Credit(ctx, w.ID, decimal.NewFromInt(500), ledger.KindTopUp, "Wallet top-up", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := svc.Settle(ctx, w.OwnerID, product.ID); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := svc.Settle(ctx, w.OwnerID, product.ID); err != nil {
		t.Fatalf("second settle: %v", err)
	}

	purchases, err := svc.Purchases(ctx, w.OwnerID)
	if err != nil {
		t.Fatalf("purchases: %v", err)
	}
	if len(purchases) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(purchases))
	}
	for _, p := range purchases {
		if p.Kind != ledger.KindPurchase {
			t.Fatalf("non-purchase transaction in history: %+v", p)
		}
	}
}
