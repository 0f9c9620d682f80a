package events

// Completion is published to Kafka after each durable completion insert.
// Publication is best-effort; consumers must tolerate at-least-once delivery.
type Completion struct {
	UserID       string `json:"user_id"`
	HabitID      string `json:"habit_id"`
	CompletionID string `json:"completion_id"`
	HabitName    string `json:"habit_name"`
	Category     string `json:"category"`
	CompletedOn  string `json:"completed_on"`
}
