package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"eventdash/internal/backend"
	"eventdash/internal/cli"
	apphttp "eventdash/internal/http"
	"eventdash/internal/log"
	"eventdash/internal/services"
	"eventdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)
	clock := cli.ClockFromConfig(cfg)

	backendCfg, err := backend.FromAppConfig(cfg, clock)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).CreateBackend(initCtx, backendCfg)
	cancelInit()
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	registrations := services.NewRegistrationService(res.Backend, res.Publisher,
		logger.WithComponent(log.ComponentRegistration).Slog())

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		PublicBaseURL:      cfg.PublicBaseURL,
		PageSize:           cfg.PageSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Clock:              clock,
	}, res.Backend, registrations, logger)
	if err != nil {
		logger.Error("Failed to create server", log.FieldError, err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	refresher := worker.NewStatusRefresher(res.Backend, clock, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		refresher.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	if err := refresher.Start(ctx, cfg.StatusRefreshSchedule); err != nil {
		logger.Error("Failed to schedule status refresh", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting eventdash server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"today", clock.Today().String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
