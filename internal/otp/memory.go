package otp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.Mutex
	codes    []OneTimePassword
	attempts []Attempt
}

// NewMemoryStore builds an in-memory OTP store for testing.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Create(ctx context.Context, code OneTimePassword, dispatch func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := dispatch(ctx); err != nil {
		s.attempts = append(s.attempts, Attempt{
			ID:          uuid.New(),
			UserID:      code.UserID,
			CodeEntered: "",
			Success:     false,
			AttemptedAt: time.Now().UTC(),
		})
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *memoryStore) LatestUnused(_ context.Context, userID uuid.UUID, purpose Purpose) (OneTimePassword, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.codes) - 1; i >= 0; i-- {
		c := s.codes[i]
		if c.UserID == userID && c.Purpose == purpose && !c.Used {
			return c, true, nil
		}
	}
	return OneTimePassword{}, false, nil
}

func (s *memoryStore) MarkUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.codes {
		if s.codes[i].ID == id {
			if s.codes[i].Used {
				return ErrCodeConsumed
			}
			s.codes[i].Used = true
			return nil
		}
	}
	return ErrCodeConsumed
}

func (s *memoryStore) RecordAttempt(_ context.Context, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

// Attempts returns a copy of the audit trail for assertions in tests.
func (s *memoryStore) Attempts() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}
