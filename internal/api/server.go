package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ecohabit/ecohabit/internal/config"
	"github.com/ecohabit/ecohabit/internal/habit"
	"github.com/ecohabit/ecohabit/internal/session"
	"github.com/ecohabit/ecohabit/internal/store"
	"github.com/ecohabit/ecohabit/pkg/database"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	db       *database.Clients
	store    *store.Store
	engine   *habit.Engine
	sessions *session.Registry
	logger   *slog.Logger
}

func NewServer(cfg *config.Config, db *database.Clients, st *store.Store, engine *habit.Engine) *Server {
	app := fiber.New()

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:      app,
		cfg:      cfg,
		db:       db,
		store:    st,
		engine:   engine,
		sessions: session.NewRegistry(),
		logger:   slog.Default(),
	}

	server.sessions.Subscribe(func(s session.Session, e session.Event) {
		server.logger.Info("session change", "user_id", s.UserID, "event", string(e))
	})

	// Routes
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	// Public routes
	api.Post("/login", s.handleLogin)

	// Protected routes
	protected := api.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(s.cfg.JWT.Secret),
	}))
	protected.Get("/habits", s.handleListHabits)
	protected.Post("/habits", s.handleCreateHabit)
	protected.Post("/habits/:id/complete", s.handleCompleteHabit)
	protected.Get("/dashboard", s.handleDashboard)
	protected.Get("/profile", s.handleGetProfile)
	protected.Get("/motivation", s.handleMotivation)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

func (s *Server) Shutdown() error {
	s.engine.Wait()
	return s.app.Shutdown()
}

var errNoSession = errors.New("no valid session")

// sessionFrom builds the explicit per-request session value from the verified
// JWT and the caller's declared time zone. The X-Timezone header carries an
// IANA zone name; anything unparseable falls back to UTC so date bucketing
// stays well-defined.
func (s *Server) sessionFrom(c *fiber.Ctx) (session.Session, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return session.Session{}, errNoSession
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return session.Session{}, errNoSession
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return session.Session{}, errNoSession
	}
	email, _ := claims["email"].(string)

	loc := time.UTC
	if name := c.Get("X-Timezone"); name != "" {
		if parsed, err := time.LoadLocation(name); err == nil {
			loc = parsed
		}
	}

	return session.Session{UserID: userID, Email: email, Location: loc}, nil
}
