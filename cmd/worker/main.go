package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"eval-analytics/cmd"
	"eval-analytics/internal/config"
	"eval-analytics/internal/messaging"
)

func main() {
	cfg, db, shutdownLogger := cmd.Bootstrap(func(c config.WorkerConfig) string { return c.DatabaseURL })
	defer shutdownLogger() //nolint:errcheck

	slog.Info("starting worker process", "storage_type", cfg.StorageType, "bucket", cfg.DatasetsBucket)

	store := cmd.CreateObjectStore(cfg.StorageConfig)

	receiver, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := messaging.NewWorker(db, store, cfg.DatasetsBucket, receiver)
	defer worker.Stop()

	slog.Info("worker started, waiting for tasks")
	worker.Start(ctx)

	slog.Info("worker process stopped")
}
