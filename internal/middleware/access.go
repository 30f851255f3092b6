package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/triple-g/buildhub-backend/internal/services"
)

// RequireAccess gates the request path against the caller's role using the
// static per-role prefix tables. Denials are logged as security violations.
func RequireAccess() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := CurrentRole(c)
		path := c.Path()

		if !services.CanAccess(role, path) {
			logViolation(c, role, path)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    "You do not have permission to access this page",
				"redirect": services.DashboardPath(role),
			})
		}
		return c.Next()
	}
}

// RequireRole restricts a route group to an explicit set of roles.
// Superadmin always passes.
func RequireRole(roles ...services.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := CurrentRole(c)
		if role == services.RoleSuperadmin {
			return c.Next()
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		logViolation(c, role, c.Path())
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    "You do not have permission to access this page",
			"redirect": services.DashboardPath(role),
		})
	}
}

func logViolation(c *fiber.Ctx, role services.Role, path string) {
	if user := CurrentUser(c); user != nil {
		log.Printf("SECURITY VIOLATION [unauthorized_access]: %s user '%s' (ID: %d) attempted to access '%s' from IP %s",
			role, user.Email, user.ID, path, c.IP())
		return
	}
	log.Printf("SECURITY VIOLATION [unauthorized_access]: anonymous user attempted to access '%s' from IP %s",
		path, c.IP())
}
