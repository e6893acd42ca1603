package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/padi-pay/padi_pay/internal/ledger"
	"github.com/padi-pay/padi_pay/internal/otp"
	"github.com/padi-pay/padi_pay/internal/provision"
)

var phonePattern = regexp.MustCompile(`^\+?\d{9,15}$`)

const minPasswordLength = 8

// Service manages the user lifecycle: registration with wallet provisioning,
// OTP-gated phone verification, and OTP-gated password recovery.
type Service struct {
	repo        Repository
	provisioner provision.Provisioner
	ledger      ledger.Ledger
	otps        *otp.Service
	logger      *slog.Logger
}

// NewService creates an identity service.
func NewService(repo Repository, provisioner provision.Provisioner, backend ledger.Ledger, otps *otp.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, provisioner: provisioner, ledger: backend, otps: otps, logger: logger}
}

// RegisterInput captures the data required to open an account.
type RegisterInput struct {
	Phone    string
	Email    string
	FullName string
	Password string
	Agent    bool
}

// Register creates an inactive user with a provisioned virtual account and
// wallet, then issues the signup OTP. Provisioning failure aborts the whole
// registration; an OTP dispatch failure does not (the user can request a
// fresh code).
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if !phonePattern.MatchString(input.Phone) {
		return User{}, errors.New("phone number must be in the format +2348000000000, up to 15 digits")
	}
	if len(input.Password) < minPasswordLength {
		return User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New(),
		Phone:        input.Phone,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Agent:        input.Agent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	name := user.FullName
	if name == "" {
		name = user.Phone
	}
	account, err := s.provisioner.Provision(ctx, provision.Request{
		Reference: fmt.Sprintf("user-%s", user.ID),
		Name:      name,
		Email:     user.Email,
	})
	if err != nil {
		return User{}, fmt.Errorf("provision virtual account: %w", err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	if err := s.ledger.CreateWallet(ctx, ledger.Wallet{
		ID:            uuid.New(),
		OwnerID:       user.ID,
		AccountNumber: account.AccountNumber,
		BankName:      account.BankName,
		Balance:       decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return User{}, fmt.Errorf("create wallet: %w", err)
	}

	if _, err := s.otps.Issue(ctx, s.recipient(user), otp.PurposeSignup, 0); err != nil {
		// The account exists; the signup code just needs re-requesting.
		s.logger.Warn("signup otp not sent", "user_id", user.ID.String(), "error", err)
	}

	return user, nil
}

// VerifyPhone checks the signup OTP and, on success, marks the phone verified
// and activates the account.
func (s *Service) VerifyPhone(ctx context.Context, userID uuid.UUID, code string) (bool, string, error) {
	ok, reason, err := s.otps.Verify(ctx, userID, code, otp.PurposeSignup)
	if err != nil || !ok {
		return ok, reason, err
	}
	if err := s.repo.MarkPhoneVerified(ctx, userID); err != nil {
		return false, "", err
	}
	return true, reason, nil
}

// RequestSignupCode reissues the signup OTP for an account that has not yet
// verified its phone.
func (s *Service) RequestSignupCode(ctx context.Context, phone string) error {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if user.PhoneVerified {
		return errors.New("phone already verified")
	}
	_, err = s.otps.Issue(ctx, s.recipient(user), otp.PurposeSignup, 0)
	return err
}

// RequestPasswordReset issues a password-reset OTP for the user matching the
// identifier, which may be a phone number or an email address.
func (s *Service) RequestPasswordReset(ctx context.Context, identifier string) error {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	_, err = s.otps.Issue(ctx, s.recipient(user), otp.PurposePasswordReset, 0)
	return err
}

// ResetPassword completes recovery: the reset OTP must verify before the new
// password is stored.
func (s *Service) ResetPassword(ctx context.Context, identifier, code, newPassword string) (bool, string, error) {
	if len(newPassword) < minPasswordLength {
		return false, "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return false, "", err
	}

	ok, reason, err := s.otps.Verify(ctx, user.ID, code, otp.PurposePasswordReset)
	if err != nil || !ok {
		return ok, reason, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, "", err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return false, "", err
	}
	return true, reason, nil
}

// Authenticate verifies the phone/password pair for an active account.
func (s *Service) Authenticate(ctx context.Context, phone, password string) (User, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, errors.New("invalid credentials")
	}
	if !user.Active {
		return User{}, errors.New("account not yet verified")
	}
	return user, nil
}

// Get fetches a user by identifier.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) findByIdentifier(ctx context.Context, identifier string) (User, error) {
	user, err := s.repo.FindByPhone(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		return s.repo.FindByEmail(ctx, identifier)
	}
	return user, err
}

func (s *Service) recipient(user User) otp.Recipient {
	return otp.Recipient{UserID: user.ID, Phone: user.Phone, Email: user.Email}
}
