package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/padi-pay/padi_pay/internal/ledger"
	"github.com/padi-pay/padi_pay/internal/logging"
	"github.com/padi-pay/padi_pay/internal/notification"
	"github.com/padi-pay/padi_pay/internal/otp"
	"github.com/padi-pay/padi_pay/internal/provision"
)

type recordingNotifier struct {
	sent []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.sent = append(n.sent, msg)
	return nil
}

type failingProvisioner struct{}

func (failingProvisioner) Provision(context.Context, provision.Request) (provision.VirtualAccount, error) {
	return provision.VirtualAccount{}, errors.New("provider down")
}

func newIdentityFixture() (*Service, ledger.Ledger, *recordingNotifier) {
	backend := ledger.NewInMemory(nil)
	notifier := &recordingNotifier{}
	logger := logging.Discard()
	otps := otp.NewService(otp.NewMemoryStore(), notifier, 0, logger)
	svc := NewService(NewMemoryRepository(), provision.StaticProvisioner{}, backend, otps, logger)
	return svc, backend, notifier
}

func TestRegisterProvisionsWalletAndSendsSignupOTP(t *testing.T) {
	svc, backend, notifier := newIdentityFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Phone:    "+2348012345678",
		Email:    "agent@example.com",
		FullName: "Ada Obi",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Active || user.PhoneVerified {
		t.Fatal("new users must start inactive and unverified")
	}

	w, err := backend.WalletByOwner(ctx, user.ID)
	if err != nil {
		t.Fatalf("wallet by owner: %v", err)
	}
	if w.AccountNumber == "" || !w.Balance.IsZero() {
		t.Fatalf("unexpected wallet: %+v", w)
	}

	if len(notifier.sent) != 1 || notifier.sent[0].Channel != notification.ChannelSMS {
		t.Fatalf("expected one signup SMS, got %+v", notifier.sent)
	}
	if !strings.Contains(notifier.sent[0].Body, "Your OTP is: ") {
		t.Fatalf("unexpected otp message body %q", notifier.sent[0].Body)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newIdentityFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "not-a-phone", Password: "long-enough"}); err == nil {
		t.Fatal("expected phone validation error")
	}
	if _, err := svc.Register(ctx, RegisterInput{Phone: "+2348012345678", Password: "short"}); err == nil {
		t.Fatal("expected password validation error")
	}
}

func TestRegisterFailsWhenProvisioningFails(t *testing.T) {
	backend := ledger.NewInMemory(nil)
	logger := logging.Discard()
	otps := otp.NewService(otp.NewMemoryStore(), &recordingNotifier{}, 0, logger)
	repo := NewMemoryRepository()
	svc := NewService(repo, failingProvisioner{}, backend, otps, logger)

	_, err := svc.Register(context.Background(), RegisterInput{
		Phone:    "+2348012345678",
		Password: "correct-horse",
	})
	if err == nil {
		t.Fatal("expected registration to fail")
	}
	if _, err := repo.FindByPhone(context.Background(), "+2348012345678"); !errors.Is(err, ErrUserNotFound) {
		t.Fatal("user must not exist when provisioning fails")
	}
}

func TestVerifyPhoneActivatesAccount(t *testing.T) {
	svc, _, notifier := newIdentityFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Phone: "+2348012345678", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := strings.TrimPrefix(notifier.sent[0].Body, "Your OTP is: ")

	ok, reason, err := svc.VerifyPhone(ctx, user.ID, code)
	if err != nil {
		t.Fatalf("verify phone: %v", err)
	}
	if !ok {
		t.Fatalf("expected verification to succeed, got %q", reason)
	}

	got, _ := svc.Get(ctx, user.ID)
	if !got.PhoneVerified || !got.Active {
		t.Fatalf("expected verified active user, got %+v", got)
	}

	// Replaying the consumed code must not succeed.
	ok, reason, _ = svc.VerifyPhone(ctx, user.ID, code)
	if ok || reason != otp.ReasonNoValidOTP {
		t.Fatalf("expected replay rejection, got ok=%v reason=%q", ok, reason)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, notifier := newIdentityFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Phone:    "+2348012345678",
		Email:    "agent@example.com",
		Password: "original-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "agent@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	last := notifier.sent[len(notifier.sent)-1]
	if last.Channel != notification.ChannelEmail {
		t.Fatalf("reset code must go to email, got %+v", last)
	}
	code := strings.TrimPrefix(last.Body, "Your OTP is: ")

	ok, reason, err := svc.ResetPassword(ctx, "agent@example.com", code, "brand-new-pass")
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if !ok {
		t.Fatalf("expected reset to succeed, got %q", reason)
	}

	got, _ := svc.Get(ctx, user.ID)
	if err := bcrypt.CompareHashAndPassword(got.PasswordHash, []byte("brand-new-pass")); err != nil {
		t.Fatal("new password not stored")
	}

	// The reset code is consumed; it cannot authorize a second change.
	ok, _, _ = svc.ResetPassword(ctx, "agent@example.com", code, "another-pass-again")
	if ok {
		t.Fatal("consumed reset code must not verify twice")
	}
}

func TestResetPasswordWithWrongCode(t *testing.T) {
	svc, _, notifier := newIdentityFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Phone: "+2348012345678", Password: "original-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "+2348012345678"); err != nil {
		t.Fatalf("request reset: %v", err)
	}

	issued := strings.TrimPrefix(notifier.sent[len(notifier.sent)-1].Body, "Your OTP is: ")
	wrong := "000000"
	if wrong == issued {
		wrong = "000001"
	}

	ok, reason, err := svc.ResetPassword(ctx, "+2348012345678", wrong, "brand-new-pass")
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if ok || reason != otp.ReasonInvalid {
		t.Fatalf("expected invalid code, got ok=%v reason=%q", ok, reason)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, notifier := newIdentityFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Phone: "+2348012345678", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Inactive until the signup OTP verifies.
	if _, err := svc.Authenticate(ctx, "+2348012345678", "correct-horse"); err == nil {
		t.Fatal("expected unverified account to be rejected")
	}

	code := strings.TrimPrefix(notifier.sent[0].Body, "Your OTP is: ")
	if ok, _, _ := svc.VerifyPhone(ctx, user.ID, code); !ok {
		t.Fatal("verify phone failed")
	}

	if _, err := svc.Authenticate(ctx, "+2348012345678", "correct-horse"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "+2348012345678", "wrong-password"); err == nil {
		t.Fatal("expected bad password to be rejected")
	}
}
