package api

import (
	"github.com/gofiber/fiber/v2"
)

// handleDashboard serves the recomputed-on-read dashboard so displayed
// figures never reflect stale writes from another session.
func (s *Server) handleDashboard(c *fiber.Ctx) error {
	sess, err := s.sessionFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No valid session",
		})
	}

	dashboard, err := s.engine.Dashboard(c.Context(), sess)
	if err != nil {
		s.logger.Error("Failed to build dashboard", "user_id", sess.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load dashboard",
		})
	}

	return c.JSON(fiber.Map{"dashboard": dashboard})
}
