package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finlens/internal/amqp"
	"finlens/internal/ledger/memory"
	"finlens/internal/services"
	"finlens/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// Event publishing is optional; a missing broker never blocks the engine.
	var events services.EventPublisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			events = amqpClient
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", events != nil)

	cleanup := func() error {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return repo.Close()
	}

	return &Result{
		Reader:  repo,
		Store:   repo,
		Events:  events,
		Cleanup: cleanup,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	store := memory.New()

	f.logger.Info("Initialized memory backend")

	return &Result{
		Reader: store,
		Store:  store,
	}, nil
}
