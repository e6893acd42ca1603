package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padi-pay/padi_pay/internal/identity"
	"github.com/padi-pay/padi_pay/internal/middleware"
)

// RegisterIdentityRoutes wires onboarding, verification, and recovery.
// Endpoints that dispatch codes sit behind the OTP rate limiter.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler, otpLimiter fiber.Handler) {
	r.Post("/identity/register", h.Register)
	r.Post("/identity/login", h.Authenticate)

	r.Post("/identity/otp/request", otpLimiter, h.RequestSignupCode)
	r.Post("/identity/verify-phone", middleware.UserContext(), h.VerifyPhone)

	r.Post("/identity/password-reset/request", otpLimiter, h.RequestPasswordReset)
	r.Post("/identity/password-reset", h.ResetPassword)
}
