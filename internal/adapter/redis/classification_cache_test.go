package redis

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/socialsent/internal/adapter/metrics"
	"github.com/pscheid92/socialsent/internal/domain"
)

var positive = domain.Classification{Label: "positive", Confidence: 0.91}

// --- In-memory cache unit tests (no Redis needed) ---

func TestMemoryCache_Miss(t *testing.T) {
	cache := newMemoryCache(10*time.Second, clockwork.NewFakeClock())

	_, hit := cache.get("missing")
	assert.False(t, hit)
}

func TestMemoryCache_HitUntilExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newMemoryCache(10*time.Second, clock)

	cache.set("k", positive)

	v, hit := cache.get("k")
	require.True(t, hit)
	assert.Equal(t, positive, v)

	clock.Advance(11 * time.Second)
	_, hit = cache.get("k")
	assert.False(t, hit, "entry must expire after TTL")
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := newMemoryCache(10*time.Second, clock)

	cache.set("old", positive)
	clock.Advance(6 * time.Second)
	cache.set("new", positive)
	clock.Advance(5 * time.Second)

	assert.Equal(t, 1, cache.evictExpired())
	assert.Equal(t, 1, cache.size())
}

func TestClassificationCache_MemoryOnly(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCacheMetrics(reg)
	cache := NewClassificationCache(nil, time.Hour, time.Minute, m, clockwork.NewFakeClock())
	ctx := context.Background()

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	cache.Set(ctx, "k", positive)
	v, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, positive, v)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues(layerMemory)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses.WithLabelValues(layerMemory)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Misses.WithLabelValues(layerRedis)), "no redis layer configured")
}

func TestClassificationCache_UnreachableRedisIsAMiss(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	cache := NewClassificationCache(rdb, time.Hour, time.Minute, nil, clockwork.NewFakeClock())
	ctx := context.Background()

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	// A failed write still populates the memory layer.
	cache.Set(ctx, "k", positive)
	v, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, positive, v)
}

func TestClassificationCache_EvictionTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	reg := prometheus.NewRegistry()
	m := metrics.NewCacheMetrics(reg)
	cache := NewClassificationCache(nil, time.Hour, time.Second, m, clock)

	cache.Set(context.Background(), "k", positive)

	stop := cache.StartEvictionTimer(time.Minute)
	defer stop()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Minute)

	assert.Eventually(t, func() bool { return cache.mem.size() == 0 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return testutil.ToFloat64(m.Evictions) == 1 }, time.Second, 5*time.Millisecond)
}
