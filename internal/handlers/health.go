package handlers

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports service liveness plus the runtime wiring that
// operators check first: which store backs the process and whether the
// mail transport is configured.
type HealthHandler struct {
	Version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		Version: version,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"service": "BuildHub Backend",
		"version": h.Version,
		"storage": StorageMode(),
		"mail":    MailStatus(),
	})
}

// StorageMode names the store backing this process
func StorageMode() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "memory"
	}
	return "postgres"
}

// MailStatus reports whether an SMTP relay is configured
func MailStatus() string {
	if os.Getenv("SMTP_HOST") == "" {
		return "not configured"
	}
	return "configured"
}
