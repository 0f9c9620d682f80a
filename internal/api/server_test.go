package api

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit/ecohabit/internal/config"
	"github.com/ecohabit/ecohabit/internal/habit"
	"github.com/ecohabit/ecohabit/internal/store"
	"github.com/ecohabit/ecohabit/pkg/database"
)

const (
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testHabitID = "22222222-2222-2222-2222-222222222222"
)

// setupTestServer initializes a test instance of the API server.
func setupTestServer(t *testing.T) (*Server, sqlmock.Sqlmock, *miniredis.Miniredis) {
	// Setup mock PostgreSQL
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")

	// Setup mock Redis
	miniRedis, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(miniRedis.Close)

	redisClient := redis.NewClient(&redis.Options{
		Addr: miniRedis.Addr(),
	})

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           ":8080",
			Environment:    "development",
			MaxRequests:    100,
			RequestTimeout: time.Minute,
		},
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			Expiration: 24 * time.Hour,
		},
		Kafka: config.KafkaConfig{
			Topic: "test-completions",
		},
	}

	clients := &database.Clients{
		DB:    db,
		Redis: redisClient,
	}

	recordStore := store.New(db)
	engine := habit.NewEngine(recordStore, redisClient, nil, nil, cfg.Kafka.Topic, nil)

	server := NewServer(cfg, clients, recordStore, engine)

	// Re-register the routes without the JWT middleware; a stub verified
	// token is injected instead so sessionFrom sees the test user.
	app := fiber.New()
	server.app = app

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   testUserID,
			"email": "eco@example.com",
		}))
		return c.Next()
	})

	app.Post("/api/login", server.handleLogin)
	app.Get("/api/habits", server.handleListHabits)
	app.Post("/api/habits", server.handleCreateHabit)
	app.Post("/api/habits/:id/complete", server.handleCompleteHabit)
	app.Get("/api/dashboard", server.handleDashboard)
	app.Get("/api/profile", server.handleGetProfile)
	app.Get("/api/motivation", server.handleMotivation)

	return server, mock, miniRedis
}
