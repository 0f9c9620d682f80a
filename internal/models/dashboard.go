package models

// Dashboard is the derived view served on dashboard load and returned after a
// completion. All figures are recomputed from the raw records on every build.
type Dashboard struct {
	TodayCompleted int           `json:"today_completed"`
	TotalHabits    int           `json:"total_habits"`
	CompletionRate int           `json:"completion_rate"`
	StreakCount    int           `json:"streak_count"`
	Habits         []HabitStatus `json:"habits"`
}
