package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/padi-pay/padi_pay/internal/notification"
)

// Verification outcome messages. These are data for callers to branch on,
// not distinct error kinds.
const (
	ReasonNoValidOTP = "No valid OTP found."
	ReasonExpired    = "OTP has expired."
	ReasonInvalid    = "Invalid OTP."
	ReasonVerified   = "OTP verified successfully."
)

// ErrDispatchFailed reports that the notifier could not deliver the code. The
// undelivered code has already been rolled back.
var ErrDispatchFailed = errors.New("otp dispatch failed")

// ErrUnknownPurpose reports an issuance request for a purpose outside the
// channel mapping.
var ErrUnknownPurpose = errors.New("unknown otp purpose")

// Service issues and verifies one-time passwords, writing every verification
// attempt to the audit trail.
type Service struct {
	store    Store
	notifier notification.Notifier
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds an OTP service. ttl is the default code lifetime; zero or
// negative falls back to DefaultTTL.
func NewService(store Store, notifier notification.Notifier, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, notifier: notifier, ttl: ttl, logger: logger, now: time.Now}
}

// Issue creates and dispatches a fresh code for the recipient and purpose.
// Prior codes are left alone: verification only ever considers the latest
// unconsumed one, so older codes simply become unreachable. Creation and
// dispatch run as one atomic unit in the store; a delivery failure leaves a
// failed attempt behind instead of a valid code. A zero ttl uses the
// service default.
func (s *Service) Issue(ctx context.Context, recipient Recipient, purpose Purpose, ttl time.Duration) (OneTimePassword, error) {
	channel, ok := channelByPurpose[purpose]
	if !ok {
		return OneTimePassword{}, ErrUnknownPurpose
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	code, err := randomCode()
	if err != nil {
		return OneTimePassword{}, fmt.Errorf("generate otp code: %w", err)
	}

	now := s.now().UTC()
	record := OneTimePassword{
		ID:        uuid.New(),
		UserID:    recipient.UserID,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	destination := recipient.Phone
	if channel == notification.ChannelEmail {
		destination = recipient.Email
	}

	err = s.store.Create(ctx, record, func(ctx context.Context) error {
		return s.notifier.Send(ctx, notification.Message{
			Channel:     channel,
			Destination: destination,
			Body:        fmt.Sprintf("Your OTP is: %s", code),
		})
	})
	if errors.Is(err, ErrDispatchFailed) {
		s.logger.Warn("otp dispatch failed",
			"user_id", recipient.UserID.String(),
			"purpose", string(purpose),
			"channel", string(channel),
			"error", err,
		)
		return OneTimePassword{}, ErrDispatchFailed
	}
	if err != nil {
		return OneTimePassword{}, err
	}

	return record, nil
}

// Verify checks the entered code against the latest unconsumed one for the
// user and purpose. Exactly one attempt row is written per call, success or
// not. A consumed code can never verify twice. The returned error covers
// storage failures only; the bool and reason carry the verification outcome.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, code string, purpose Purpose) (bool, string, error) {
	active, found, err := s.store.LatestUnused(ctx, userID, purpose)
	if err != nil {
		return false, "", err
	}

	if !found {
		return s.fail(ctx, userID, code, ReasonNoValidOTP)
	}
	if active.ExpiresAt.Before(s.now()) {
		return s.fail(ctx, userID, code, ReasonExpired)
	}
	if active.Code != code {
		return s.fail(ctx, userID, code, ReasonInvalid)
	}

	if err := s.store.MarkUsed(ctx, active.ID); err != nil {
		if errors.Is(err, ErrCodeConsumed) {
			// Lost the race to another verification of the same code.
			return s.fail(ctx, userID, code, ReasonNoValidOTP)
		}
		return false, "", err
	}

	if err := s.store.RecordAttempt(ctx, Attempt{
		ID:          uuid.New(),
		UserID:      userID,
		CodeEntered: code,
		Success:     true,
		AttemptedAt: s.now().UTC(),
	}); err != nil {
		return false, "", err
	}
	return true, ReasonVerified, nil
}

func (s *Service) fail(ctx context.Context, userID uuid.UUID, code, reason string) (bool, string, error) {
	if err := s.store.RecordAttempt(ctx, Attempt{
		ID:          uuid.New(),
		UserID:      userID,
		CodeEntered: code,
		Success:     false,
		AttemptedAt: s.now().UTC(),
	}); err != nil {
		return false, "", err
	}
	return false, reason, nil
}

// randomCode draws a uniformly random six-digit code; leading zeros allowed.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
