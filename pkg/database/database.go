package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(dbURL, redisAddr string) (*Clients, error) {
	// Connect to PostgreSQL
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Clients{
		DB:    db,
		Redis: redisClient,
	}, nil
}

// CreateHabitTables creates the three collections the tracker works with. The
// unique index on (habit_id, completed_on) is the authority for the
// one-completion-per-day rule; the application only pre-checks it.
func (c *Clients) CreateHabitTables() error {
	schema := `CREATE TABLE IF NOT EXISTS habits (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS habits_owner_idx ON habits (owner_id);

	CREATE TABLE IF NOT EXISTS completions (
		id UUID PRIMARY KEY,
		habit_id UUID NOT NULL REFERENCES habits (id),
		owner_id UUID NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		completed_on TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'done',
		UNIQUE (habit_id, completed_on)
	);
	CREATE INDEX IF NOT EXISTS completions_owner_idx ON completions (owner_id);

	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		streak_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := c.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to create habit tables: %w", err)
	}

	slog.Info("✅ Habit tables are ready!")
	return nil
}
