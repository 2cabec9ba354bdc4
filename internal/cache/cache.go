// Package cache is the provider response cache. Quotes and statements are
// cached under short TTLs so repeated funnel runs inside one session do
// not re-bill the same upstream calls.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw provider payloads keyed by endpoint+symbol.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

type memoryCache struct {
	mu sync.Mutex
	m  map[string]memoryEntry
}

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// NewMemory returns an in-process cache, the default when no Redis address
// is configured.
func NewMemory() Cache {
	return &memoryCache{m: make(map[string]memoryEntry)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		delete(c.m, key)
		return nil, false
	}
	return e.payload, true
}

func (c *memoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{payload: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.m[key] = e
}

type redisCache struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedis returns a Redis-backed cache shared across scanner instances.
func NewRedis(client *redis.Client) Cache {
	return &redisCache{client: client, timeout: 500 * time.Millisecond}
}

// New picks the Redis cache when addr is set, memory otherwise.
func New(addr string) Cache {
	if addr != "" {
		return NewRedis(redis.NewClient(&redis.Options{Addr: addr}))
	}
	return NewMemory()
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	v, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_ = c.client.Set(ctx, key, val, ttl).Err()
}
