package models

import "time"

// Profile holds per-user display data. StreakCount is a denormalized cache of
// the history-derived streak; the aggregator is the source of truth and
// reconciles it on read.
type Profile struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	StreakCount int       `json:"streak_count" db:"streak_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
