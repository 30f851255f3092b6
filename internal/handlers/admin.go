package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/middleware"
	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// AdminHandler handles approval management and the admin dashboard
type AdminHandler struct {
	store     storage.Store
	approvals *services.ApprovalService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, approvals *services.ApprovalService) *AdminHandler {
	return &AdminHandler{
		store:     store,
		approvals: approvals,
	}
}

// GetPendingApprovals lists admin profiles waiting for sign-off
func (h *AdminHandler) GetPendingApprovals(c *fiber.Ctx) error {
	profiles, err := h.store.GetAdminProfilesByStatus(models.ApprovalPending)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch pending approvals",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"approvals": profiles,
		"count":     len(profiles),
	})
}

// UpdateApproval approves, denies or suspends an admin profile
func (h *AdminHandler) UpdateApproval(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("userID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var req struct {
		Status string `json:"status"` // "approved", "denied" or "suspended"
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	profile, err := h.store.GetAdminProfileByUser(uint(userID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Admin profile not found",
		})
	}

	actor := middleware.CurrentUser(c)
	switch req.Status {
	case models.ApprovalApproved:
		err = h.approvals.Approve(profile, actor)
	case models.ApprovalDenied:
		err = h.approvals.Deny(profile, actor)
	case models.ApprovalSuspended:
		err = h.approvals.Suspend(profile, actor)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status must be 'approved', 'denied' or 'suspended'",
		})
	}

	if errors.Is(err, services.ErrUnauthorized) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only an approved administrator may change approval status",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"profile": profile,
	})
}

// LockAccount places a temporary lock on an admin account
func (h *AdminHandler) LockAccount(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("userID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := c.BodyParser(&req); err != nil || req.Minutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A positive lock duration in minutes is required",
		})
	}

	profile, err := h.store.GetAdminProfileByUser(uint(userID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Admin profile not found",
		})
	}

	if err := h.approvals.LockAccount(profile, timeMinutes(req.Minutes)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to lock account",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"locked_until": profile.AccountLockedUntil,
	})
}

func timeMinutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}

// Dashboard returns the counters shown on the admin home page
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	totalUsers, err := h.store.CountUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load dashboard",
		})
	}
	approved, _ := h.store.CountAdminProfilesByStatus(models.ApprovalApproved)
	pending, _ := h.store.CountAdminProfilesByStatus(models.ApprovalPending)

	return c.JSON(fiber.Map{
		"total_users":       totalUsers,
		"total_admins":      approved,
		"pending_approvals": pending,
	})
}
