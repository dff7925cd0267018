// Package history selects where review sessions are recorded.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/infrastructure/persistence/sqlite"
)

// StoreType represents the type of history store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
)

// Errors returned by NewStore
var (
	ErrInvalidConfig    = errors.New("invalid history configuration")
	ErrInvalidStoreType = errors.New("invalid history store type")
)

// NewStore creates a SessionRecorder of the given type.
// SQLite requires WithSQLiteDB or WithSQLitePath; Redis requires WithRedisClient.
func NewStore(ctx context.Context, storeType StoreType, opts ...StoreOption) (output.SessionRecorder, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory:
		return NewMemoryStore(), nil

	case StoreTypeSQLite:
		return openSQLite(ctx, cfg)

	case StoreTypeRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis store needs a client", ErrInvalidConfig)
		}
		ttl := cfg.redisTTL
		if ttl <= 0 {
			ttl = defaultRedisTTL
		}
		prefix := cfg.redisPrefix
		if prefix == "" {
			prefix = defaultRedisPrefix
		}
		return NewRedisStore(cfg.redisClient, prefix, ttl), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}

// sqliteStore closes the database it opened
type sqliteStore struct {
	*sqlite.SessionRepositoryImpl
	db *sql.DB
}

func (s *sqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openSQLite(ctx context.Context, cfg *storeConfig) (output.SessionRecorder, error) {
	db, owned := cfg.sqliteDB, false
	if db == nil {
		if cfg.sqlitePath == "" {
			return nil, fmt.Errorf("%w: sqlite store needs a database or a path", ErrInvalidConfig)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.sqlitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		var err error
		db, err = sql.Open("sqlite3", cfg.sqlitePath+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("open history database: %w", err)
		}
		owned = true
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlite.NewMigrator(db).Migrate(migrateCtx); err != nil {
		if owned {
			db.Close()
		}
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	store := &sqliteStore{SessionRepositoryImpl: sqlite.NewSessionRepository(db)}
	if owned {
		store.db = db
	}
	return store, nil
}
