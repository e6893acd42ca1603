package otp

import (
	"time"

	"github.com/google/uuid"

	"github.com/padi-pay/padi_pay/internal/notification"
)

// Purpose scopes which code is eligible for a given verification call.
type Purpose string

const (
	PurposeSignup        Purpose = "signup"
	PurposeLogin         Purpose = "login"
	PurposePasswordReset Purpose = "password_reset"
)

// DefaultTTL is how long a code stays verifiable after issuance.
const DefaultTTL = 5 * time.Minute

// channelByPurpose maps each purpose to its delivery channel: account flows
// go to the phone, recovery goes to email.
var channelByPurpose = map[Purpose]notification.Channel{
	PurposeSignup:        notification.ChannelSMS,
	PurposeLogin:         notification.ChannelSMS,
	PurposePasswordReset: notification.ChannelEmail,
}

// Valid reports whether the purpose is one of the known values.
func (p Purpose) Valid() bool {
	_, ok := channelByPurpose[p]
	return ok
}

// OneTimePassword is a short-lived six-digit code tied to one user and
// purpose. Rows are retained after expiry and consumption for audit.
type OneTimePassword struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Purpose   Purpose
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// Attempt is one row of the append-only verification audit trail.
type Attempt struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CodeEntered string
	Success     bool
	AttemptedAt time.Time
}

// Recipient carries the delivery endpoints for a user without pulling the
// whole identity model into this package.
type Recipient struct {
	UserID uuid.UUID
	Phone  string
	Email  string
}
