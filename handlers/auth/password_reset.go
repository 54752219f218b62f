package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/model"
	authutil "github.com/vivekdhawan/gravimetry-api/utils/auth"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
	"github.com/vivekdhawan/gravimetry-api/utils/validation"
)

// PasswordResetRequest asks for a reset token for an email
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordReset completes a reset with the token and new password
type PasswordReset struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// RequestPasswordReset issues a single-use reset token for the email.
// Issuing invalidates any earlier token for the same email.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req PasswordResetRequest
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

	token, err := h.tokens.IssueResetToken(c.Context(), user.Email)
	if err != nil {
		return response.InternalServerError(c, "Failed to create reset token")
	}

	// Email delivery is simulated: the token is logged and returned so a
	// development client can complete the flow.
	log.Printf("Password reset token for %s: %s", req.Email, token)

	return response.Success(c, fiber.Map{
		"message": "Password reset token generated and (simulated) sent to email.",
		"token":   token,
	})
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req PasswordReset
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.BadRequest(c, validation.FormatValidationError(err))
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	if err := h.tokens.ConsumeResetToken(c.Context(), req.Token, req.NewPassword); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, fiber.Map{
		"message": "Password updated successfully",
	})
}
