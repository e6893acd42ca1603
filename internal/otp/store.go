package otp

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCodeConsumed reports that the code was already marked used, typically by
// a concurrent verification racing this one.
var ErrCodeConsumed = errors.New("otp already consumed")

// Store persists one-time passwords and their attempt audit trail.
type Store interface {
	// Create inserts a fresh code and runs dispatch inside the same atomic
	// unit. When dispatch fails the code is discarded and a failed attempt
	// with an empty entered code is recorded instead, so a crash at any
	// point of issuance never leaves a deliverable code that was never
	// delivered. Returns an error matching ErrDispatchFailed when dispatch
	// was the failing step.
	Create(ctx context.Context, code OneTimePassword, dispatch func(context.Context) error) error

	// LatestUnused returns the most recently created unconsumed code for the
	// user and purpose. Older unconsumed codes are never considered: only the
	// latest matters. found is false when no eligible code exists.
	LatestUnused(ctx context.Context, userID uuid.UUID, purpose Purpose) (code OneTimePassword, found bool, err error)

	// MarkUsed consumes the code. It fails with ErrCodeConsumed when the code
	// was already used, which makes double-spending a code impossible even
	// under concurrent verification attempts.
	MarkUsed(ctx context.Context, id uuid.UUID) error

	// RecordAttempt appends one audit row.
	RecordAttempt(ctx context.Context, attempt Attempt) error
}
