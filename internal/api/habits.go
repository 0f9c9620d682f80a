package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ecohabit/ecohabit/internal/habit"
	"github.com/ecohabit/ecohabit/internal/models"
	"github.com/ecohabit/ecohabit/internal/store"
)

// handleCreateHabit creates a habit definition for the session user.
// Validation failures abort before any write; duplicate names are fine.
func (s *Server) handleCreateHabit(c *fiber.Ctx) error {
	sess, err := s.sessionFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No valid session",
		})
	}

	var req models.NewHabitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	created, err := s.store.CreateHabit(c.Context(), sess.UserID, req)
	if err != nil {
		s.logger.Error("Failed to create habit", "user_id", sess.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create habit",
		})
	}

	s.logger.Info("Habit created", "user_id", sess.UserID, "habit_id", created.ID, "category", created.Category)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"habit": created,
	})
}

// handleListHabits lists the caller's habits with their completed-today flags.
func (s *Server) handleListHabits(c *fiber.Ctx) error {
	sess, err := s.sessionFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No valid session",
		})
	}

	habits, err := s.store.ListHabits(c.Context(), sess.UserID)
	if err != nil {
		s.logger.Error("Failed to list habits", "user_id", sess.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch habits",
		})
	}
	completions, err := s.store.ListCompletions(c.Context(), sess.UserID)
	if err != nil {
		s.logger.Error("Failed to list completions", "user_id", sess.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch habits",
		})
	}

	today := habit.DayOf(time.Now(), sess.Zone())
	completedToday := make(map[string]bool)
	for _, comp := range completions {
		if comp.CompletedOn == today {
			completedToday[comp.HabitID] = true
		}
	}

	statuses := make([]models.HabitStatus, 0, len(habits))
	for _, h := range habits {
		statuses = append(statuses, models.HabitStatus{
			Habit:          h,
			CompletedToday: completedToday[h.ID],
		})
	}

	return c.JSON(fiber.Map{"habits": statuses})
}

// handleCompleteHabit marks a habit done for today. A same-day repeat comes
// back as already_completed with status 200; it is a state, not an error.
func (s *Server) handleCompleteHabit(c *fiber.Ctx) error {
	sess, err := s.sessionFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No valid session",
		})
	}

	habitID := c.Params("id")
	outcome, err := s.engine.CompleteHabit(c.Context(), sess, habitID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Habit not found",
		})
	}
	if err != nil {
		s.logger.Error("Failed to complete habit", "user_id", sess.UserID, "habit_id", habitID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to complete habit",
		})
	}

	return c.JSON(outcome)
}

// handleMotivation pops the pending transient encouragement, if the
// generator has produced one since the last poll.
func (s *Server) handleMotivation(c *fiber.Ctx) error {
	sess, err := s.sessionFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No valid session",
		})
	}

	text, ok := s.engine.Motivation(c.Context(), sess.UserID)
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(fiber.Map{"motivation": text})
}
