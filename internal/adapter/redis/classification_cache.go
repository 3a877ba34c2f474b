package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/domain"
)

const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

// ClassificationCache is a two-layer cache: a per-process TTL map in front of
// Redis. With a nil Redis client it degrades to the in-memory layer alone.
// Redis failures are logged and treated as misses.
type ClassificationCache struct {
	rdb      goredis.Cmdable
	redisTTL time.Duration
	mem      *memoryCache
	metrics  *metrics.CacheMetrics
	clock    clockwork.Clock
}

var _ domain.ClassificationCache = (*ClassificationCache)(nil)

// NewClassificationCache creates the cache. rdb and m may be nil.
func NewClassificationCache(rdb goredis.Cmdable, redisTTL, memTTL time.Duration, m *metrics.CacheMetrics, clock clockwork.Clock) *ClassificationCache {
	return &ClassificationCache{
		rdb:      rdb,
		redisTTL: redisTTL,
		mem:      newMemoryCache(memTTL, clock),
		metrics:  m,
		clock:    clock,
	}
}

// StartEvictionTimer runs a periodic goroutine that evicts expired in-memory entries.
// Returns a stop function that should be deferred.
func (c *ClassificationCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				evicted := c.mem.evictExpired()
				if evicted > 0 {
					if c.metrics != nil {
						c.metrics.Evictions.Add(float64(evicted))
					}
					slog.Debug("Evicted expired classification cache entries", "count", evicted, "remaining", c.mem.size())
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}

func (c *ClassificationCache) Get(ctx context.Context, key string) (domain.Classification, bool) {
	// Layer 1: in-memory cache
	if v, ok := c.mem.get(key); ok {
		c.hit(layerMemory)
		return v, true
	}
	c.miss(layerMemory)

	if c.rdb == nil {
		return domain.Classification{}, false
	}

	// Layer 2: Redis
	v, ok := c.getCached(ctx, key)
	if !ok {
		c.miss(layerRedis)
		return domain.Classification{}, false
	}
	c.hit(layerRedis)
	c.mem.set(key, v)
	return v, true
}

func (c *ClassificationCache) Set(ctx context.Context, key string, v domain.Classification) {
	c.mem.set(key, v)
	if c.rdb != nil {
		c.writeCache(ctx, key, v)
	}
}

func (c *ClassificationCache) getCached(ctx context.Context, key string) (domain.Classification, bool) {
	data, err := c.rdb.Get(ctx, classificationCacheKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "Redis classification cache GET failed", "error", err)
		}
		return domain.Classification{}, false
	}

	var v domain.Classification
	if err := json.Unmarshal(data, &v); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached classification", "error", err)
		return domain.Classification{}, false
	}
	return v, true
}

func (c *ClassificationCache) writeCache(ctx context.Context, key string, v domain.Classification) {
	encoded, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal classification for Redis cache", "error", err)
		return
	}

	if err := c.rdb.Set(ctx, classificationCacheKey(key), encoded, c.redisTTL).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to populate Redis classification cache", "error", err)
	}
}

func (c *ClassificationCache) hit(layer string) {
	if c.metrics != nil {
		c.metrics.Hits.WithLabelValues(layer).Inc()
	}
}

func (c *ClassificationCache) miss(layer string) {
	if c.metrics != nil {
		c.metrics.Misses.WithLabelValues(layer).Inc()
	}
}

func classificationCacheKey(key string) string {
	return "classification:" + key
}

// memoryCache is an in-memory L1 cache with TTL-based expiry.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type memoryCacheEntry struct {
	value     domain.Classification
	expiresAt time.Time
}

func newMemoryCache(ttl time.Duration, clock clockwork.Clock) *memoryCache {
	return &memoryCache{
		entries: make(map[string]memoryCacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

func (c *memoryCache) get(key string) (domain.Classification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.clock.Now().After(entry.expiresAt) {
		return domain.Classification{}, false
	}
	return entry.value, true
}

func (c *memoryCache) set(key string, v domain.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		value:     v,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *memoryCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}
