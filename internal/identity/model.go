package identity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered wallet owner. Accounts start inactive and
// unlock once the signup OTP verifies the phone number.
type User struct {
	ID            uuid.UUID
	Phone         string
	Email         string
	FullName      string
	PasswordHash  []byte
	Agent         bool
	PhoneVerified bool
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
