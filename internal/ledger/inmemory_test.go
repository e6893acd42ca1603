package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestWallet(t *testing.T, l Ledger) Wallet {
	t.Helper()
	now := time.Now().UTC()
	w := Wallet{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: "30" + uuid.NewString()[:8],
		BankName:      "Moniepoint",
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.CreateWallet(context.Background(), w); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return w
}

func TestCreditThenDebitRestoresBalance(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	w := newTestWallet(t, l)
	SeedBalance(l, w.ID, decimal.NewFromInt(500))

	amount := decimal.RequireFromString("42.50")
	if _, err := l.Credit(ctx, w.ID, amount, KindTopUp, "Wallet top-up", nil); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := l.Debit(ctx, w.ID, amount, KindWithdraw, "Wallet withdrawal", nil); err != nil {
		t.Fatalf("debit: %v", err)
	}

	got, err := l.WalletByOwner(ctx, w.OwnerID)
	if err != nil {
		t.Fatalf("wallet by owner: %v", err)
	}
	if !got.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balance not restored, got %s", got.Balance)
	}

	txns, err := l.Transactions(ctx, w.ID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected exactly 2 transactions, got %d", len(txns))
	}
	// Newest first.
	if txns[0].Kind != KindWithdraw || txns[1].Kind != KindTopUp {
		t.Fatalf("unexpected transaction order: %s, %s", txns[0].Kind, txns[1].Kind)
	}
}

func TestDebitInsufficientFundsLeavesStateUntouched(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	w := newTestWallet(t, l)
	SeedBalance(l, w.ID, decimal.RequireFromString("100.00"))

	if _, err := l.Debit(ctx, w.ID, decimal.RequireFromString("30.00"), KindWithdraw, "Wallet withdrawal", nil); err != nil {
		t.Fatalf("first debit: %v", err)
	}

	if _, err := l.Debit(ctx, w.ID, decimal.RequireFromString("200.00"), KindWithdraw, "Wallet withdrawal", nil); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	got, _ := l.WalletByOwner(ctx, w.OwnerID)
	if !got.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("expected balance 70.00, got %s", got.Balance)
	}
	txns, _ := l.Transactions(ctx, w.ID)
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	if txns[0].Kind != KindWithdraw || !txns[0].Amount.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("unexpected transaction: %+v", txns[0])
	}
}

func TestMutationsRejectNonPositiveAmounts(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	w := newTestWallet(t, l)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if _, err := l.Credit(ctx, w.ID, amount, KindTopUp, "", nil); err != ErrInvalidAmount {
			t.Fatalf("credit %s: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := l.Debit(ctx, w.ID, amount, KindWithdraw, "", nil); err != ErrInvalidAmount {
			t.Fatalf("debit %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	if txns, _ := l.Transactions(ctx, w.ID); len(txns) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txns))
	}
}

func TestConcurrentCreditsDoNotLoseUpdates(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	w := newTestWallet(t, l)
	SeedBalance(l, w.ID, decimal.NewFromInt(10))

	var wg sync.WaitGroup
	for _, amount := range []int64{50, 70} {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			if _, err := l.Credit(ctx, w.ID, decimal.NewFromInt(n), KindTopUp, "Wallet top-up", nil); err != nil {
				t.Errorf("credit %d: %v", n, err)
			}
		}(amount)
	}
	wg.Wait()

	got, _ := l.WalletByOwner(ctx, w.OwnerID)
	if !got.Balance.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("expected balance 130, got %s", got.Balance)
	}
	txns, _ := l.Transactions(ctx, w.ID)
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	w := newTestWallet(t, l)
	SeedBalance(l, w.ID, decimal.NewFromInt(100))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Debit(ctx, w.ID, decimal.NewFromInt(30), KindWithdraw, "Wallet withdrawal", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch err {
		case nil:
			succeeded++
		case ErrInsufficientFunds:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected exactly 3 debits of 30 from 100, got %d", succeeded)
	}

	got, _ := l.WalletByOwner(ctx, w.OwnerID)
	if !got.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance 10, got %s", got.Balance)
	}
}

func TestTransactionLogReconcilesToBalance(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	w := newTestWallet(t, l)

	l.Credit(ctx, w.ID, decimal.NewFromInt(1000), KindTopUp, "Wallet top-up", nil)
	l.Debit(ctx, w.ID, decimal.NewFromInt(250), KindPurchase, "Purchased MTN 1GB", nil)
	l.Debit(ctx, w.ID, decimal.NewFromInt(100), KindWithdraw, "Wallet withdrawal", nil)
	l.Credit(ctx, w.ID, decimal.NewFromInt(40), KindTopUp, "Provider webhook credit", nil)

	txns, _ := l.Transactions(ctx, w.ID)
	sum := decimal.Zero
	for _, txn := range txns {
		switch txn.Kind {
		case KindTopUp:
			sum = sum.Add(txn.Amount)
		case KindWithdraw, KindPurchase:
			sum = sum.Sub(txn.Amount)
		}
	}

	got, _ := l.WalletByOwner(ctx, w.OwnerID)
	if !sum.Equal(got.Balance) {
		t.Fatalf("transaction log sums to %s but balance is %s", sum, got.Balance)
	}
}
