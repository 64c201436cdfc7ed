package server

import (
	"github.com/gofiber/fiber/v2"
)

// AdminSweep handles POST /api/admin/requests/sweep, running the expiry
// sweep on demand. The response carries the sweep summary.
func (s *Server) AdminSweep(c *fiber.Ctx) error {
	summary, err := s.cleanupService.AutoRejectExpired(c.Context(), "admin")
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// CronSweep handles POST /api/internal/cron/sweep, the machine-to-machine
// trigger for external schedulers. Guarded by the x-api-key header.
func (s *Server) CronSweep(c *fiber.Ctx) error {
	summary, err := s.cleanupService.AutoRejectExpired(c.Context(), "internal")
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// GetFeatureFlags handles GET /api/admin/feature-flags, exposing the raw
// flag configuration and its evaluation for the calling admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
