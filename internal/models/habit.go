package models

import (
	"errors"
	"fmt"
	"time"
)

// Habit is a user-defined sustainability habit. Habits are owned exclusively
// by the user that created them and are never edited or deleted.
type Habit struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Categories is the closed set of habit categories.
var Categories = []string{
	"Reduce Plastic",
	"Save Water",
	"Conserve Energy",
	"Sustainable Transport",
	"Eco-Friendly Food",
	"Reduce Waste",
	"Other",
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NewHabitRequest is the payload for creating a habit.
type NewHabitRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Validate checks the request against the habit contract. Duplicate names
// are allowed, so there is no uniqueness check here.
func (r *NewHabitRequest) Validate() error {
	if r.Name == "" {
		return errors.New("habit name is required")
	}
	if !ValidCategory(r.Category) {
		return fmt.Errorf("unknown category: %q", r.Category)
	}
	return nil
}

// HabitStatus decorates a habit with its completed-today flag for dashboard
// and list responses.
type HabitStatus struct {
	Habit
	CompletedToday bool `json:"completed_today"`
}
