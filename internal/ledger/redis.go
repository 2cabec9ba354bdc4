package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisHashKey = "pennywatch:cooldown"

// RedisStore keeps the ledger in a Redis hash so multiple scanner
// instances share one cooldown state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the last-alerted time for key, or ErrNoRecord.
func (s *RedisStore) Get(ctx context.Context, key string) (time.Time, error) {
	raw, err := s.client.HGet(ctx, redisHashKey, key).Result()
	if err == redis.Nil {
		return time.Time{}, ErrNoRecord
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis ledger get: %w", err)
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse redis ledger timestamp for %s: %w", key, err)
	}
	return at, nil
}

// Put overwrites the last-alerted time for key.
func (s *RedisStore) Put(ctx context.Context, key string, at time.Time) error {
	if err := s.client.HSet(ctx, redisHashKey, key, at.UTC().Format(time.RFC3339)).Err(); err != nil {
		return fmt.Errorf("redis ledger put: %w", err)
	}
	return nil
}
