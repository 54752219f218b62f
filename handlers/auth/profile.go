package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vivekdhawan/gravimetry-api/model"
	authutil "github.com/vivekdhawan/gravimetry-api/utils/auth"
	"github.com/vivekdhawan/gravimetry-api/utils/middleware"
	"github.com/vivekdhawan/gravimetry-api/utils/response"
)

// UpdateProfileRequest represents a profile update request. Only supplied
// fields are merged; a new password routes through the same hashing path
// as signup.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	NewPassword *string `json:"new_password,omitempty"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, userResponse(user))
}

// UpdateProfile updates the current user's details
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.NewPassword != nil && *req.NewPassword != "" {
		hashed, err := authutil.HashPassword(*req.NewPassword)
		if err != nil {
			return response.BadRequest(c, "Password must be at least 8 characters long")
		}
		updates["password_hash"] = hashed
	}

	if len(updates) > 0 {
		if err := h.db.Model(user).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	// Fetch the updated user to return the latest state
	var updated model.User
	if err := h.db.First(&updated, user.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to retrieve updated user data.")
	}

	return response.Success(c, userResponse(&updated))
}

// ListUsers retrieves all registered users
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	var users []model.User
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i])
	}
	return response.Success(c, out)
}
