package backend

import (
	"context"

	"finlens/internal/ledger"
	"finlens/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result bundles everything a backend provides: the ledger reader, the
// statement store, an optional event publisher, and a cleanup function.
type Result struct {
	Reader  ledger.Reader
	Store   ledger.Store
	Events  services.EventPublisher
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Type selects the persistence backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
