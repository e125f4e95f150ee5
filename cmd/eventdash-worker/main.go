package main

import (
	"context"
	"os"
	"time"

	"eventdash/internal/amqp"
	"eventdash/internal/cli"
	"eventdash/internal/log"
	"eventdash/internal/storage"
	"eventdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	clock := cli.ClockFromConfig(cfg)

	logger.Info("Starting eventdash-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// Registrations are read from and marked in SQLite
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger.WithComponent(log.ComponentStorage).Slog())
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), time.Minute)
	client, err := amqp.NewClientWithRetry(connectCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5,
		logger.WithComponent(log.ComponentAMQP).Slog())
	cancelConnect()
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	notifications := worker.NewNotificationWorker(repo, client, logger)
	refresher := worker.NewStatusRefresher(repo, clock, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		refresher.Stop()
	})

	if err := refresher.Start(ctx, cfg.StatusRefreshSchedule); err != nil {
		logger.Error("Failed to schedule status refresh", log.FieldError, err)
		os.Exit(1)
	}

	if err := notifications.Run(ctx); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		refresher.Stop()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
