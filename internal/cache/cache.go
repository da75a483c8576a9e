// Package cache stores dashboard aggregates between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Cache is a JSON value cache. Get reports a miss with ok == false.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (ok bool, err error)
	Set(ctx context.Context, key string, v any) error
	Flush(ctx context.Context) error
	Close() error
}

// Noop caches nothing.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Flush(context.Context) error                    { return nil }
func (Noop) Close() error                                   { return nil }

// Connect builds a Redis client from a redis:// URL or a bare host:port.
func Connect(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, eris.Wrap(err, "cache: parse redis url")
		}
		return redis.NewClient(opt), nil
	}
	if redisURL == "" {
		return nil, eris.New("cache: redis url is required")
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisCache keeps values under prefix with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. Keys are namespaced as "<prefix>:<key>".
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the namespaced Redis key.
func (c *RedisCache) Key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get decodes a cached value into dst.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "cache: get %s", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, eris.Wrapf(err, "cache: decode %s", key)
	}
	return true, nil
}

// Set stores v as JSON.
func (c *RedisCache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s", key)
	}
	if err := c.client.Set(ctx, c.Key(key), raw, c.ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: set %s", key)
	}
	return nil
}

// Flush deletes every key under the prefix.
func (c *RedisCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.Key("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return eris.Wrap(err, "cache: scan")
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return eris.Wrap(err, "cache: flush")
	}
	zap.L().Debug("cache: flushed", zap.Int("keys", len(keys)), zap.String("prefix", c.prefix))
	return nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return eris.Wrap(c.client.Ping(ctx).Err(), "cache: ping")
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

type entry struct {
	raw     []byte
	expires time.Time
}

// Memory is an in-process cache for single-node runs and tests.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// NewMemory creates a Memory cache. A zero ttl never expires entries.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

// Get decodes a cached value into dst.
func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && m.ttl > 0 && m.now().After(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.raw, dst); err != nil {
		return false, eris.Wrapf(err, "cache: decode %s", key)
	}
	return true, nil
}

// Set stores v as JSON.
func (m *Memory) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cache: encode %s", key)
	}
	m.mu.Lock()
	m.entries[key] = entry{raw: raw, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Flush drops every entry.
func (m *Memory) Flush(context.Context) error {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }
