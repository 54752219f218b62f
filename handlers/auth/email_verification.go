package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/model"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
	"github.com/vivekdhawan/gravimetry-api/utils/validation"
)

// EmailVerificationRequest asks for a verification token for an email
type EmailVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// EmailVerification completes verification with the token
type EmailVerification struct {
	Token string `json:"token" validate:"required"`
}

// RequestEmailVerification issues a single-use verification token for the
// email. Issuing invalidates any earlier token for the same email.
func (h *AuthHandler) RequestEmailVerification(c *fiber.Ctx) error {
	var req EmailVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, validation.FormatValidationError(err))
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if user.IsVerified {
		return response.BadRequest(c, "Email already verified")
	}

	token, err := h.tokens.IssueVerificationToken(c.Context(), user.Email)
	if err != nil {
		return response.InternalServerError(c, "Failed to create verification token")
	}

	log.Printf("Email verification token for %s: %s", req.Email, token)

	return response.Success(c, fiber.Map{
		"message": "Verification token generated and (simulated) sent to email.",
		"token":   token,
	})
}

// VerifyEmail consumes a verification token and marks the user verified.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req EmailVerification
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, validation.FormatValidationError(err))
	}

	if err := h.tokens.ConsumeVerificationToken(c.Context(), req.Token); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"message": "Email successfully verified.",
	})
}
