package intake

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/padi-pay/padi_pay/internal/ledger"
	"github.com/padi-pay/padi_pay/internal/logging"
)

const testSecret = "whsec-test"

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newIntakeFixture(t *testing.T) (*Service, ledger.Ledger, ledger.Wallet) {
	t.Helper()
	backend := ledger.NewInMemory(nil)
	now := time.Now().UTC()
	w := ledger.Wallet{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		AccountNumber: "3001234567",
		BankName:      "Moniepoint",
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := backend.CreateWallet(context.Background(), w); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return NewService(testSecret, backend, logging.Discard()), backend, w
}

func successfulBody(accountNumber, amount string) []byte {
	return []byte(fmt.Sprintf(`{"eventType":"SUCCESSFUL_TRANSACTION","eventData":{"accountDetails":{"accountNumber":%q},"amount":%s}}`, accountNumber, amount))
}

func TestHandleCreditsWallet(t *testing.T) {
	svc, backend, w := newIntakeFixture(t)
	body := successfulBody(w.AccountNumber, "2500.50")

	result, err := svc.Handle(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result != ResultCredited {
		t.Fatalf("expected credited, got %s", result)
	}

	got, _ := backend.WalletByAccountNumber(context.Background(), w.AccountNumber)
	if !got.Balance.Equal(decimal.RequireFromString("2500.50")) {
		t.Fatalf("expected balance 2500.50, got %s", got.Balance)
	}

	txns, _ := backend.Transactions(context.Background(), w.ID)
	if len(txns) != 1 || txns[0].Kind != ledger.KindTopUp || txns[0].Description != creditNote {
		t.Fatalf("unexpected transaction log: %+v", txns)
	}
}

func TestHandleRejectsTamperedBody(t *testing.T) {
	svc, backend, w := newIntakeFixture(t)
	body := successfulBody(w.AccountNumber, "100")
	signature := sign(body)
	tampered := successfulBody(w.AccountNumber, "100000")

	_, err := svc.Handle(context.Background(), tampered, signature)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	got, _ := backend.WalletByAccountNumber(context.Background(), w.AccountNumber)
	if !got.Balance.IsZero() {
		t.Fatalf("balance mutated on bad signature: %s", got.Balance)
	}
	if txns, _ := backend.Transactions(context.Background(), w.ID); len(txns) != 0 {
		t.Fatalf("transactions written on bad signature: %+v", txns)
	}
}

func TestHandleRejectsMissingSignature(t *testing.T) {
	svc, _, w := newIntakeFixture(t)
	body := successfulBody(w.AccountNumber, "100")

	if _, err := svc.Handle(context.Background(), body, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestHandleIgnoresOtherEventTypes(t *testing.T) {
	svc, backend, w := newIntakeFixture(t)
	body := []byte(`{"eventType":"TRANSACTION_REVERSED","eventData":{"accountDetails":{"accountNumber":"3001234567"},"amount":50}}`)

	result, err := svc.Handle(context.Background(), body, sign(body))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result != ResultIgnored {
		t.Fatalf("expected ignored, got %s", result)
	}

	got, _ := backend.WalletByAccountNumber(context.Background(), w.AccountNumber)
	if !got.Balance.IsZero() {
		t.Fatalf("balance mutated on ignored event: %s", got.Balance)
	}
}

func TestHandleUnknownAccount(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)
	body := successfulBody("9999999999", "100")

	if _, err := svc.Handle(context.Background(), body, sign(body)); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	svc, _, _ := newIntakeFixture(t)
	body := []byte(`{"eventType":`)

	_, err := svc.Handle(context.Background(), body, sign(body))
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
