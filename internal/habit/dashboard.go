package habit

import (
	"context"
	"errors"

	"github.com/ecohabit/ecohabit/internal/models"
	"github.com/ecohabit/ecohabit/internal/session"
	"github.com/ecohabit/ecohabit/internal/store"
)

// Dashboard rebuilds the derived figures from the raw records. It runs on
// every dashboard load and after every completion, so displayed numbers never
// trust a stale cache: a profile streak_count that disagrees with the
// history-derived streak is reconciled here.
func (e *Engine) Dashboard(ctx context.Context, sess session.Session) (models.Dashboard, error) {
	habits, err := e.store.ListHabits(ctx, sess.UserID)
	if err != nil {
		return models.Dashboard{}, err
	}
	completions, err := e.store.ListCompletions(ctx, sess.UserID)
	if err != nil {
		return models.Dashboard{}, err
	}

	today := DayOf(e.now(), sess.Zone())
	todayCount := TodayCompletionCount(completions, today)
	streak := CurrentStreak(completions, today)

	e.reconcileStreak(ctx, sess.UserID, streak)

	completedToday := make(map[string]bool, todayCount)
	for _, c := range completions {
		if c.CompletedOn == today {
			completedToday[c.HabitID] = true
		}
	}

	statuses := make([]models.HabitStatus, 0, len(habits))
	for _, h := range habits {
		statuses = append(statuses, models.HabitStatus{
			Habit:          h,
			CompletedToday: completedToday[h.ID],
		})
	}

	return models.Dashboard{
		TodayCompleted: todayCount,
		TotalHabits:    len(habits),
		CompletionRate: CompletionRate(todayCount, len(habits)),
		StreakCount:    streak,
		Habits:         statuses,
	}, nil
}

// reconcileStreak writes the recomputed streak through to the profile row and
// the Redis cache when they have drifted. Failures are logged, never
// propagated: the profile figure is a cache, not the durable fact.
func (e *Engine) reconcileStreak(ctx context.Context, userID string, streak int) {
	profile, err := e.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Signup provisioning happens outside this core; nothing to reconcile.
	case err != nil:
		e.logger.Warn("failed to load profile for streak reconcile", "user_id", userID, "error", err)
	case profile.StreakCount != streak:
		if err := e.store.UpdateStreak(ctx, userID, streak); err != nil {
			e.logger.Warn("failed to persist streak", "user_id", userID, "error", err)
		}
	}

	if e.redis == nil {
		return
	}
	if err := e.redis.Set(ctx, streakKey(userID), streak, 0).Err(); err != nil {
		e.logger.Debug("failed to cache streak", "user_id", userID, "error", err)
	}
}
