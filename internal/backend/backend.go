// Package backend selects and constructs the blob store implementation the
// rest of the app persists through.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"kaskelas/internal/blobstore"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the blob store instance and optional cleanup function
type Result struct {
	Store   blobstore.Store
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Redis specific
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Type represents the kind of blob store backing the fund data
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	RedisBackend  Type = "redis"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, RedisBackend:
		return true
	default:
		return false
	}
}

// Factory creates blob stores based on configuration
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the blob store named by the config.
func (f *Factory) Create(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLite(config)
	case RedisBackend:
		return f.createRedis(ctx, config)
	default:
		return f.createMemory()
	}
}

func (f *Factory) createSQLite(config Config) (*Result, error) {
	store, err := blobstore.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite blob store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *Factory) createRedis(ctx context.Context, config Config) (*Result, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	f.logger.Info("Initialized Redis backend", "addr", config.RedisAddr, "db", config.RedisDB)

	return &Result{
		Store:   blobstore.NewRedisStore(client),
		Cleanup: client.Close,
	}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend")

	return &Result{
		Store:   blobstore.NewMemoryStore(),
		Cleanup: nil, // nothing to release
	}, nil
}
