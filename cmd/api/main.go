package main

import (
	"log/slog"
	"os"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"

	"github.com/ecohabit/ecohabit/internal/api"
	"github.com/ecohabit/ecohabit/internal/config"
	"github.com/ecohabit/ecohabit/internal/habit"
	"github.com/ecohabit/ecohabit/internal/motivation"
	"github.com/ecohabit/ecohabit/internal/pkg/supabase"
	"github.com/ecohabit/ecohabit/internal/store"
	"github.com/ecohabit/ecohabit/pkg/database"
	"github.com/ecohabit/ecohabit/pkg/kafka"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	// Initialize database clients
	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("✅ Connected to databases")

	if err := db.CreateHabitTables(); err != nil {
		slog.Error("Failed to create habit tables", "error", err)
		os.Exit(1)
	}

	// Initialize the Supabase identity collaborator
	if cfg.Supabase.URL != "" {
		if err := supabase.InitClient(cfg.Supabase.URL, cfg.Supabase.AnonKey); err != nil {
			slog.Error("Failed to initialize Supabase client", "error", err)
			os.Exit(1)
		}
	}

	// Completion events are optional; no broker means no publishing
	var producer sarama.SyncProducer
	if cfg.Kafka.Broker != "" {
		producer, err = kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		slog.Info("✅ Connected to Kafka")
	}

	notifier := motivation.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	recordStore := store.New(db.DB)
	engine := habit.NewEngine(recordStore, db.Redis, notifier, producer, cfg.Kafka.Topic, slog.Default())

	// Create and start server
	server := api.NewServer(cfg, db, recordStore, engine)
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
