package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/padi-pay/padi_pay/internal/otp"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Agent    bool   `json:"is_agent"`
}

type userResponse struct {
	UserID        string `json:"user_id"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Agent         bool   `json:"is_agent"`
	PhoneVerified bool   `json:"phone_verified"`
	Active        bool   `json:"is_active"`
}

func toUserResponse(user User) userResponse {
	return userResponse{
		UserID:        user.ID.String(),
		Phone:         user.Phone,
		Email:         user.Email,
		FullName:      user.FullName,
		Agent:         user.Agent,
		PhoneVerified: user.PhoneVerified,
		Active:        user.Active,
	}
}

// Register handles user onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.Register(c.UserContext(), RegisterInput{
		Phone:    req.Phone,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Agent:    req.Agent,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toUserResponse(user))
}

type verifyPhoneRequest struct {
	Code string `json:"otp"`
}

// VerifyPhone consumes the signup OTP for the calling user and activates the
// account on success.
func (h *Handler) VerifyPhone(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "missing or invalid user id")
	}
	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	ok, reason, err := h.service.VerifyPhone(c.UserContext(), userID, req.Code)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"message": reason})
}

type resendCodeRequest struct {
	Phone string `json:"phone"`
}

// RequestSignupCode reissues the signup OTP for an unverified account.
func (h *Handler) RequestSignupCode(c *fiber.Ctx) error {
	var req resendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.RequestSignupCode(c.UserContext(), req.Phone); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "A new code has been sent."})
}

type passwordResetRequest struct {
	Identifier string `json:"identifier"`
}

// RequestPasswordReset sends a reset OTP to the email of the account matching
// the identifier.
func (h *Handler) RequestPasswordReset(c *fiber.Ctx) error {
	var req passwordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.RequestPasswordReset(c.UserContext(), req.Identifier); err != nil {
		// Do not leak which identifiers have accounts.
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(http.StatusOK).JSON(fiber.Map{"message": "If the account exists, a reset code has been sent."})
		}
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "If the account exists, a reset code has been sent."})
}

type resetPasswordRequest struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"otp"`
	NewPassword string `json:"new_password"`
}

// ResetPassword completes recovery once the reset OTP verifies.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	ok, reason, err := h.service.ResetPassword(c.UserContext(), req.Identifier, req.Code, req.NewPassword)
	if err != nil {
		// An unknown identifier reads the same as a wrong code, so this
		// endpoint cannot be used to discover which accounts exist.
		if errors.Is(err, ErrUserNotFound) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": otp.ReasonNoValidOTP})
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": reason})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password updated."})
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Authenticate verifies login credentials.
func (h *Handler) Authenticate(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.Authenticate(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	return c.Status(http.StatusOK).JSON(toUserResponse(user))
}
