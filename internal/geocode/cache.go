package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"loolook_backend/internal/geo"

	"github.com/redis/go-redis/v9"
)

// MemoryCache is a process-local, append-only cache of resolved
// coordinates keyed by normalized address. It guarantees a given address
// is looked up at most once per session; entries are never invalidated
// because coordinates do not change within a session's lifetime.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]geo.Point
}

// NewMemoryCache creates an empty session cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]geo.Point)}
}

// Get returns the cached point for the address, if any.
func (c *MemoryCache) Get(addr string) (geo.Point, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[addr]
	return p, ok
}

// Set stores the point for the address.
func (c *MemoryCache) Set(addr string, p geo.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[addr] = p
}

// Len returns the number of cached addresses.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const (
	redisKeyPrefix = "geocode:"
	redisEntryTTL  = 30 * 24 * time.Hour
)

// RedisCache shares resolved coordinates across processes so separate
// server instances and batch runs do not repeat provider calls for the
// same address. Failures are soft: a broken redis degrades to cache-miss.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a cache over the given redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached point for the address, if present.
func (c *RedisCache) Get(ctx context.Context, addr string) (*geo.Point, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+addr).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p geo.Point
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Set stores the point for the address with a fixed TTL.
func (c *RedisCache) Set(ctx context.Context, addr string, p geo.Point) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKeyPrefix+addr, raw, redisEntryTTL).Err()
}
