package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/middleware"
	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

const pendingCookie = "buildhub_pending"
const sessionCookie = "buildhub_session"

// AccountHandler handles registration, OTP verification and login for all
// three account types (client, site manager, admin).
type AccountHandler struct {
	store     storage.Store
	auth      *services.AuthService
	otp       *services.OTPService
	approvals *services.ApprovalService
	sessions  *services.SessionManager
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(store storage.Store, auth *services.AuthService, otp *services.OTPService,
	approvals *services.ApprovalService, sessions *services.SessionManager) *AccountHandler {
	return &AccountHandler{
		store:     store,
		auth:      auth,
		otp:       otp,
		approvals: approvals,
		sessions:  sessions,
	}
}

// Register returns a registration handler for the given admin role;
// an empty role registers a plain client account.
func (h *AccountHandler) Register(adminRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reg models.UserRegistration
		if err := c.BodyParser(&reg); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if reg.Email == "" || reg.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email and password are required",
			})
		}

		user, err := h.auth.Register(&reg, adminRole)
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "An account with this email already exists",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to register account",
			})
		}

		// Bind the pending identity to a browser session for the verify step
		token := h.sessions.Begin(user.ID)
		c.Cookie(&fiber.Cookie{
			Name:     pendingCookie,
			Value:    token,
			HTTPOnly: true,
			Expires:  time.Now().Add(30 * time.Minute),
		})

		response := fiber.Map{
			"message": "Registration successful. A verification code has been sent to your email.",
			"user_id": user.ID,
		}
		if _, err := h.otp.Issue(user); errors.Is(err, services.ErrMailDelivery) {
			// Code is persisted; the user can still request a resend
			response["warning"] = "Verification email could not be sent. Use resend to try again."
		}
		return c.Status(fiber.StatusCreated).JSON(response)
	}
}

func (h *AccountHandler) pendingUser(c *fiber.Ctx) (*models.User, error) {
	token := c.Cookies(pendingCookie)
	if token == "" {
		return nil, services.ErrNotFound
	}
	userID, ok := h.sessions.PendingIdentity(token)
	if !ok {
		return nil, services.ErrNotFound
	}
	user, err := h.store.GetUser(userID)
	if err != nil {
		return nil, services.ErrNotFound
	}
	return user, nil
}

// VerifyOTP validates the submitted code and activates the account
func (h *AccountHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification code is required",
		})
	}

	user, err := h.pendingUser(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    "No pending registration found. Please register again.",
			"redirect": "/accounts/client/register",
		})
	}

	switch err := h.otp.Verify(user.ID, req.Code); {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    "No verification code found. Please register again.",
			"redirect": "/accounts/client/register",
		})
	case errors.Is(err, services.ErrInvalidCode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Incorrect verification code. Please try again.",
		})
	case errors.Is(err, services.ErrExpired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Verification code has expired. Please request a new one.",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Verification failed",
		})
	}

	h.sessions.End(c.Cookies(pendingCookie))
	c.ClearCookie(pendingCookie)

	response := fiber.Map{
		"message": "Email verified. Your account is now active.",
	}
	// Approval-gated accounts still wait for manual sign-off
	if profile, err := h.store.GetAdminProfileByUser(user.ID); err == nil &&
		profile.ApprovalStatus == models.ApprovalPending {
		response["message"] = "Email verified. Your account is awaiting approval."
		response["approval_status"] = profile.ApprovalStatus
	}
	return c.JSON(response)
}

// ResendOTP issues a fresh code, rate-limited to one per minute
func (h *AccountHandler) ResendOTP(c *fiber.Ctx) error {
	user, err := h.pendingUser(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":    "No pending registration found. Please register again.",
			"redirect": "/accounts/client/register",
		})
	}

	switch _, err := h.otp.Resend(user); {
	case errors.Is(err, services.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Please wait a minute before requesting another code",
		})
	case errors.Is(err, services.ErrMailDelivery):
		return c.JSON(fiber.Map{
			"message": "A new code was generated but the email could not be sent. Try again shortly.",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resend verification code",
		})
	}

	return c.JSON(fiber.Map{
		"message": "A new verification code has been sent to your email",
	})
}

// Login authenticates by email and password and sets the session cookie
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, token, err := h.auth.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrBadCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Your account is not active or not approved for login",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		HTTPOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	})

	profile, perr := h.store.GetAdminProfileByUser(user.ID)
	if perr != nil {
		profile = nil
	}
	role := services.ResolveRole(user, profile, time.Now())

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"token":     token,
		"role":      role,
		"dashboard": services.DashboardPath(role),
	})
}

// Logout clears the session cookie
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(sessionCookie)
	return c.JSON(fiber.Map{
		"message":  "You have been logged out successfully",
		"redirect": "/",
	})
}

// PendingApproval reports the approval state of the caller's admin profile
func (h *AccountHandler) PendingApproval(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		if pending, err := h.pendingUser(c); err == nil {
			user = pending
		}
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":    "Authentication required",
			"redirect": "/accounts/sitemanager/login",
		})
	}

	profile, err := h.store.GetAdminProfileByUser(user.ID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No admin profile found for this account",
		})
	}

	return c.JSON(fiber.Map{
		"approval_status": profile.ApprovalStatus,
		"admin_role":      profile.AdminRole,
		"approved_at":     profile.ApprovedAt,
	})
}
