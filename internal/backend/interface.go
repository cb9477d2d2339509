package backend

import (
	"context"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/storage"
)

// CleanupFunc releases the resources opened by a backend.
type CleanupFunc func() error

// BackendResult is the assembled persistence stack.
type BackendResult struct {
	Store storage.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	CacheSize int
	CacheTTL  time.Duration

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
