package models

import "time"

// StatusDone is the only completion status in use.
const StatusDone = "done"

// Completion records that a habit was performed on a specific calendar day.
// CompletedOn is the "YYYY-MM-DD" date in the owner's time zone at the moment
// the completion was requested; the store enforces uniqueness per
// (habit_id, completed_on).
type Completion struct {
	ID          string    `json:"id" db:"id"`
	HabitID     string    `json:"habit_id" db:"habit_id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	CompletedOn string    `json:"completed_on" db:"completed_on"`
	Status      string    `json:"status" db:"status"`
}
