package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaitlab/gait-service/internal/config"
	"github.com/gaitlab/gait-service/internal/services/media"
	"github.com/gaitlab/gait-service/internal/storage/postgres"
	"github.com/gaitlab/gait-service/internal/sweeper"
	"github.com/gaitlab/gait-service/internal/utils/logging"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	// Load config
	cfg := config.MustLoad()
	logger := logging.Setup(cfg.Log)

	if !cfg.DatabaseEnabled() || !cfg.ObjectStorageEnabled() {
		log.Fatal("orphan sweeper needs both the gateway database and the storage bucket configured")
	}

	// Initialize database connection
	storage, err := postgres.NewPostgres(cfg.Gateway.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer storage.Close()
	slog.Info("Connected to Postgres database")

	objects, err := media.NewService(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage:", err)
	}

	worker := sweeper.NewWorker(objects, storage, cfg.Media.OrphanGracePeriod, cfg.Media.SweepInterval, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	// Start the worker
	worker.Start(ctx)

	slog.Info("Orphan sweeper stopped")
}
