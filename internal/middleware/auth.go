package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

// Context keys for the resolved identity
const (
	localUser    = "current_user"
	localProfile = "current_profile"
	localRole    = "current_role"
)

// Authenticate resolves the request identity from a bearer token or the
// session cookie and stashes user, profile and role in the request locals.
// Unauthenticated requests continue as anonymous; authorization happens in
// RequireAccess.
func Authenticate(store storage.Store, auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies("buildhub_session")
		}

		role := services.RoleAnonymous
		if token != "" {
			if userID, err := auth.ParseToken(token); err == nil {
				if user, err := store.GetUser(userID); err == nil {
					profile, perr := store.GetAdminProfileByUser(user.ID)
					if perr != nil {
						profile = nil
					}
					c.Locals(localUser, user)
					c.Locals(localProfile, profile)
					role = services.ResolveRole(user, profile, time.Now())
				}
			}
		}

		c.Locals(localRole, role)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// CurrentUser returns the authenticated user, or nil for anonymous requests
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentProfile returns the admin profile of the authenticated user, if any
func CurrentProfile(c *fiber.Ctx) *models.AdminProfile {
	profile, _ := c.Locals(localProfile).(*models.AdminProfile)
	return profile
}

// CurrentRole returns the resolved role for the request
func CurrentRole(c *fiber.Ctx) services.Role {
	role, ok := c.Locals(localRole).(services.Role)
	if !ok {
		return services.RoleAnonymous
	}
	return role
}

// RequireUser rejects requests with no authenticated identity
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "Authentication required",
				"redirect": "/accounts/client/login",
			})
		}
		return c.Next()
	}
}
