package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wallet/internal/account"
	"wallet/internal/amqp"
	"wallet/internal/cache"
	"wallet/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store   storage.Store
		closers []func() error
	)

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		closers = append(closers, repo.Close)
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = storage.NewMemoryStore()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.CacheSize > 0 {
		lru := cache.NewLRUCache[account.Snapshot](config.CacheSize, config.CacheTTL)
		manager := cache.NewManager(f.logger)
		manager.Register(lru)
		manager.StartCleanup(config.CacheTTL)
		closers = append(closers, func() error { manager.Stop(); return nil })
		store = storage.NewCachedStore(store, lru, f.logger)
		f.logger.InfoContext(ctx, "Account cache enabled", "size", config.CacheSize, "ttl", config.CacheTTL)
	}

	// AMQP is optional: a broker outage degrades to local-only saves.
	var publisher *amqp.Client
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without export events", "error", err)
		} else {
			publisher = client
			closers = append(closers, client.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return &BackendResult{
		Store:     store,
		Publisher: publisher,
		Cleanup:   closeAll(closers),
	}, nil
}

// closeAll runs closers in reverse order and joins their errors.
func closeAll(closers []func() error) CleanupFunc {
	return func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
