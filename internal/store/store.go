package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ecohabit/ecohabit/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when the (habit_id, completed_on) uniqueness
	// constraint rejects a completion insert.
	ErrConflict = errors.New("completion already recorded for this day")
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = pq.ErrorCode("23505")

// Store is the typed accessor over the habits, completions and profiles
// tables. Every read is scoped to the caller's owner id; the store never
// returns another user's records. It does not pre-check the one-per-day rule,
// it only surfaces the database's own uniqueness verdict as ErrConflict.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	habits := []models.Habit{}
	err := s.db.SelectContext(ctx, &habits,
		"SELECT id, owner_id, name, description, category, created_at FROM habits WHERE owner_id = $1 ORDER BY created_at",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

func (s *Store) GetHabit(ctx context.Context, ownerID, habitID string) (models.Habit, error) {
	var habit models.Habit
	err := s.db.GetContext(ctx, &habit,
		"SELECT id, owner_id, name, description, category, created_at FROM habits WHERE id = $1 AND owner_id = $2",
		habitID, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, ErrNotFound
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit: %w", err)
	}
	return habit, nil
}

func (s *Store) ListCompletions(ctx context.Context, ownerID string) ([]models.Completion, error) {
	completions := []models.Completion{}
	err := s.db.SelectContext(ctx, &completions,
		"SELECT id, habit_id, owner_id, completed_at, completed_on, status FROM completions WHERE owner_id = $1 ORDER BY completed_at",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

func (s *Store) ListHabitCompletions(ctx context.Context, ownerID, habitID string) ([]models.Completion, error) {
	completions := []models.Completion{}
	err := s.db.SelectContext(ctx, &completions,
		"SELECT id, habit_id, owner_id, completed_at, completed_on, status FROM completions WHERE owner_id = $1 AND habit_id = $2 ORDER BY completed_at",
		ownerID, habitID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit completions: %w", err)
	}
	return completions, nil
}

func (s *Store) GetProfile(ctx context.Context, ownerID string) (models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile,
		"SELECT id, name, streak_count, created_at FROM profiles WHERE id = $1",
		ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *Store) CreateHabit(ctx context.Context, ownerID string, req models.NewHabitRequest) (models.Habit, error) {
	habit := models.Habit{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO habits (id, owner_id, name, description, category, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		habit.ID, habit.OwnerID, habit.Name, habit.Description, habit.Category, habit.CreatedAt,
	)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	return habit, nil
}

// InsertCompletion appends a completion for the given habit and day. The day
// is passed in precomputed so that the uniqueness constraint and later reads
// agree with the moment-of-request bucketing.
func (s *Store) InsertCompletion(ctx context.Context, ownerID, habitID string, at time.Time, day string) (models.Completion, error) {
	completion := models.Completion{
		ID:          uuid.NewString(),
		HabitID:     habitID,
		OwnerID:     ownerID,
		CompletedAt: at,
		CompletedOn: day,
		Status:      models.StatusDone,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO completions (id, habit_id, owner_id, completed_at, completed_on, status) VALUES ($1, $2, $3, $4, $5, $6)",
		completion.ID, completion.HabitID, completion.OwnerID, completion.CompletedAt, completion.CompletedOn, completion.Status,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.Completion{}, ErrConflict
	}
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to insert completion: %w", err)
	}
	return completion, nil
}

func (s *Store) UpdateStreak(ctx context.Context, ownerID string, streak int) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET streak_count = $1 WHERE id = $2",
		streak, ownerID,
	); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}
