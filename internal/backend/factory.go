package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventdash/internal/adapters"
	"eventdash/internal/amqp"
	"eventdash/internal/core"
	"eventdash/internal/sheets"
	"eventdash/internal/storage"
	"eventdash/internal/store/memory"
)

// amqpConnectAttempts bounds startup retries; registrations still work
// without a broker.
const amqpConnectAttempts = 3

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	seed, err := memory.LoadSeedDir(config.DataDirectory)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load seed: %w", err)
	}
	if _, err := repo.SeedIfEmpty(ctx, seed, today(config)); err != nil {
		repo.Close()
		return nil, err
	}
	// Statuses stored by an earlier run may be stale.
	if _, err := repo.RefreshStatuses(ctx, today(config)); err != nil {
		repo.Close()
		return nil, err
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.NewClient(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		EventsSheet:        config.GoogleEventsSheet,
		RegistrationsSheet: config.GoogleRegistrationsSheet,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	seed, err := memory.LoadSeedDir(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	adapter, err := adapters.NewSheetsAdapter(ctx, cli, seed, today(config), f.logger)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &BackendResult{Backend: adapter}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromDir(config.DataDirectory, today(config))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", config.DataDirectory)

	return &BackendResult{Backend: store}, nil
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached is logged and skipped.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClientWithRetry(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, amqpConnectAttempts, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	prev := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
		if prev != nil {
			if err := prev(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func today(config Config) core.Date {
	if config.Today == nil {
		return core.DateOf(time.Now())
	}
	return core.DateOf(config.Today())
}
