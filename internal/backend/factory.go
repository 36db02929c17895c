package backend

import (
	"fmt"
	"log/slog"

	"budgetbot/internal/amqp"
	"budgetbot/internal/ledger"
	"budgetbot/internal/storage"
)

// CleanupFunc releases the backend's resources
type CleanupFunc func() error

// Result bundles the ledger repository, the optional AMQP recorder
// and a cleanup function for both.
type Result struct {
	Repository ledger.Repository
	Recorder   ledger.Recorder
	Cleanup    CleanupFunc
}

// Factory creates persistence backends based on configuration
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateBackend builds the repository named by config.Type, plus the
// AMQP sync client when an AMQP URL is configured. A broker that is
// down at startup is logged and skipped, never fatal.
func (f *Factory) CreateBackend(config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	result := &Result{}

	switch config.Type {
	case FileBackend:
		repo, err := storage.NewFileRepository(config.StateFile)
		if err != nil {
			return nil, fmt.Errorf("initialize file repository: %w", err)
		}
		result.Repository = repo
		result.Cleanup = func() error { return nil }
		f.logger.Info("Initialized file backend", "path", config.StateFile)

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		result.Repository = repo
		result.Cleanup = repo.Close
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			result.Recorder = client
			inner := result.Cleanup
			result.Cleanup = func() error {
				client.Close()
				if inner != nil {
					return inner()
				}
				return nil
			}
			f.logger.Info("Initialized AMQP sync client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return result, nil
}
