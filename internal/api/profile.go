package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ecohabit/ecohabit/internal/store"
)

// handleGetProfile returns the session user's profile. The Redis streak cache
// overrides the stored streak_count when present, so a freshly recomputed
// streak shows up even if the profile write lagged.
func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	sess, err := s.sessionFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No valid session",
		})
	}

	profile, err := s.store.GetProfile(c.Context(), sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Profile not found",
		})
	}
	if err != nil {
		s.logger.Error("Failed to fetch profile", "user_id", sess.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch profile",
		})
	}

	if cached, err := s.db.Redis.Get(c.Context(), "streak:"+sess.UserID).Result(); err == nil {
		if streak, convErr := strconv.Atoi(cached); convErr == nil {
			profile.StreakCount = streak
		}
	}

	return c.JSON(fiber.Map{"profile": profile})
}
