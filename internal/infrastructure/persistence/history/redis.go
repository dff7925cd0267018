package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

const (
	defaultRedisPrefix = "repostflow"
	defaultRedisTTL    = 30 * 24 * time.Hour
)

// RedisStore keeps each session as a JSON value with a TTL and indexes them
// in a sorted set scored by start time
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session recorder
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// SaveSession writes the session and its index entry in one MULTI/EXEC
func (s *RedisStore) SaveSession(ctx context.Context, sess *review.Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.ID), val, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(sess.StartedAt.UnixMilli()),
			Member: sess.ID.String(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// FindSession loads one session
func (s *RedisStore) FindSession(ctx context.Context, id review.SessionID) (*review.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", output.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess review.Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// ListSessions returns up to limit sessions, newest first. Index entries
// whose session key has expired are removed.
func (s *RedisStore) ListSessions(ctx context.Context, limit int) ([]*review.Session, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read session index: %w", err)
	}
	if len(ids) == 0 {
		return []*review.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(review.SessionID(id))
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}

	sessions := make([]*review.Session, 0, len(vals))
	var expired []interface{}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var sess review.Session
		if err := json.Unmarshal([]byte(str), &sess); err != nil {
			return nil, fmt.Errorf("unmarshal session %s: %w", ids[i], err)
		}
		sessions = append(sessions, &sess)
	}

	if len(expired) > 0 {
		_ = s.client.ZRem(ctx, s.indexKey(), expired...).Err()
	}
	return sessions, nil
}

// Close implements output.SessionRecorder.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id review.SessionID) string {
	return s.prefix + ":session:" + id.String()
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":sessions"
}
