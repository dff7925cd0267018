package history

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreOption is a functional option for configuring a history store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	sqliteDB    *sql.DB
	sqlitePath  string
	redisClient *redis.Client
	redisTTL    time.Duration
	redisPrefix string
}

// WithSQLiteDB uses an open database. The caller keeps ownership of it.
func WithSQLiteDB(db *sql.DB) StoreOption {
	return func(c *storeConfig) {
		c.sqliteDB = db
	}
}

// WithSQLitePath opens (and on Close, closes) the database at path
func WithSQLitePath(path string) StoreOption {
	return func(c *storeConfig) {
		c.sqlitePath = path
	}
}

// WithRedisClient sets the Redis client for the Redis store.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithRedisTTL sets the TTL of session keys.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.redisTTL = ttl
	}
}

// WithRedisPrefix sets the key prefix, "repostflow" by default.
func WithRedisPrefix(prefix string) StoreOption {
	return func(c *storeConfig) {
		c.redisPrefix = prefix
	}
}
