package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/triple-g/buildhub-backend/internal/middleware"
)

// Settings returns the account details for the settings page
func (h *AccountHandler) Settings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "Authentication required",
			"redirect": "/accounts/client/login",
		})
	}
	return c.JSON(fiber.Map{
		"user": user,
		"role": middleware.CurrentRole(c),
	})
}

// UpdateSettings changes account details or the password. A password change
// requires the current password.
func (h *AccountHandler) UpdateSettings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "Authentication required",
			"redirect": "/accounts/client/login",
		})
	}

	var req struct {
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	if req.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Current password is incorrect",
			})
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update password",
			})
		}
		user.PasswordHash = string(hash)
	}

	if err := h.store.UpdateUser(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update account",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account updated successfully",
	})
}
