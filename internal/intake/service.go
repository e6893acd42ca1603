package intake

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/padi-pay/padi_pay/internal/ledger"
)

var (
	// ErrUnauthorized reports a payload whose signature does not match the
	// shared secret. Nothing is mutated or logged against a wallet.
	ErrUnauthorized = errors.New("webhook signature mismatch")

	// ErrAccountNotFound reports a credit for a virtual account number no
	// wallet owns. The provider's own retry policy governs redelivery.
	ErrAccountNotFound = errors.New("no wallet for account number")
)

// EventSuccessfulTransaction is the only provider event that credits a
// wallet; every other event type is acknowledged and ignored.
const EventSuccessfulTransaction = "SUCCESSFUL_TRANSACTION"

const creditNote = "Provider webhook credit"

// Result describes how a webhook was handled.
type Result string

const (
	// ResultCredited means the wallet balance was increased.
	ResultCredited Result = "credited"
	// ResultIgnored means the event type required no action.
	ResultIgnored Result = "ignored"
)

type payload struct {
	EventType string `json:"eventType"`
	EventData struct {
		AccountDetails struct {
			AccountNumber string `json:"accountNumber"`
		} `json:"accountDetails"`
		Amount json.Number `json:"amount"`
	} `json:"eventData"`
}

// Service validates provider credit notifications and applies them to the
// ledger through the same atomic credit path used internally.
type Service struct {
	secret []byte
	ledger ledger.Ledger
	logger *slog.Logger
}

// NewService builds a webhook intake service with the provider's shared
// secret.
func NewService(secret string, backend ledger.Ledger, logger *slog.Logger) *Service {
	return &Service{secret: []byte(secret), ledger: backend, logger: logger}
}

// Handle verifies the signature over the raw body, then credits the wallet
// the payload names. Signature verification happens before anything else
// touches state; a mismatch leaves no trace on any wallet.
func (s *Service) Handle(ctx context.Context, rawBody []byte, signature string) (Result, error) {
	if !s.signatureValid(rawBody, signature) {
		return "", ErrUnauthorized
	}

	var p payload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return "", fmt.Errorf("decode webhook payload: %w", err)
	}

	if p.EventType != EventSuccessfulTransaction {
		s.logger.Info("webhook event ignored", "event_type", p.EventType)
		return ResultIgnored, nil
	}

	amount, err := decimal.NewFromString(p.EventData.Amount.String())
	if err != nil {
		return "", fmt.Errorf("parse webhook amount %q: %w", p.EventData.Amount, err)
	}

	accountNumber := p.EventData.AccountDetails.AccountNumber
	w, err := s.ledger.WalletByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			s.logger.Warn("webhook credit for unknown account", "account_number", accountNumber)
			return "", ErrAccountNotFound
		}
		return "", err
	}

	txn, err := s.ledger.Credit(ctx, w.ID, amount, ledger.KindTopUp, creditNote, nil)
	if err != nil {
		return "", err
	}

	s.logger.Info("webhook credit applied",
		"wallet_id", w.ID.String(),
		"transaction_id", txn.ID.String(),
		"amount", amount.String(),
	)
	return ResultCredited, nil
}

// signatureValid computes the HMAC-SHA512 hex digest of the raw body and
// compares it to the header value in constant time.
func (s *Service) signatureValid(rawBody []byte, signature string) bool {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
