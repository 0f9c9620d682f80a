package habit

import (
	"math"

	"github.com/ecohabit/ecohabit/internal/models"
)

// TodayCompletionCount counts completions whose calendar day equals today.
func TodayCompletionCount(completions []models.Completion, today string) int {
	count := 0
	for _, c := range completions {
		if c.CompletedOn == today {
			count++
		}
	}
	return count
}

// CompletionRate returns round(todayCount/totalHabits*100) clamped to
// [0, 100]. A user with no habits has a rate of 0, not a division by zero.
func CompletionRate(todayCount, totalHabits int) int {
	if totalHabits <= 0 {
		return 0
	}
	rate := int(math.Round(float64(todayCount) / float64(totalHabits) * 100))
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// CurrentStreak derives the streak from the full completion history: the
// number of consecutive calendar days with at least one completion, ending
// today or yesterday. A day with zero completions before yesterday breaks the
// chain, so the first completion after a gap yields a streak of 1. This
// function is the source of truth; Profile.StreakCount is only a cache of it.
func CurrentStreak(completions []models.Completion, today string) int {
	days := make(map[string]bool, len(completions))
	for _, c := range completions {
		days[c.CompletedOn] = true
	}

	anchor := today
	if !days[anchor] {
		anchor = previousDay(today)
	}

	streak := 0
	for day := anchor; day != "" && days[day]; day = previousDay(day) {
		streak++
	}
	return streak
}
