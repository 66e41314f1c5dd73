package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/sudmegaphone/backend/internal/config"
	"github.com/sudmegaphone/backend/internal/database"
	"github.com/sudmegaphone/backend/internal/ocr"
	"github.com/sudmegaphone/backend/internal/queue"
	"github.com/sudmegaphone/backend/internal/queue/workers"
	"github.com/sudmegaphone/backend/internal/scan"
	"github.com/sudmegaphone/backend/internal/security"
	"github.com/sudmegaphone/backend/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewSupabaseStore(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	gateway := ocr.NewGateway(cfg.OCR)
	scanSvc := scan.NewService(db, store, cfg.Storage.ScansBucket, gateway)
	securitySvc := security.NewService(db)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	scanWorker := workers.NewScanWorker(scanSvc)
	securityWorker := workers.NewSecurityWorker(securitySvc)

	registry.Register(queue.TypeScanProcess, asynq.HandlerFunc(scanWorker.ProcessTask))
	registry.Register(queue.TypeSecurityEvent, asynq.HandlerFunc(securityWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10, "tasks", registry.Tasks())
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
