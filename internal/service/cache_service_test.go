package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCache struct{ memoryCache }

func (f *failingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	store := newMemoryCache()
	metrics := NewMetricsService()
	cache := NewCacheService(store, metrics, 0, nil, true)

	var out map[string]int
	hit, err := cache.Get(context.Background(), "elearn:test", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), "elearn:test", map[string]int{"a": 1}, 0))
	hit, err = cache.Get(context.Background(), "elearn:test", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))
}

func TestCacheServiceDisabled(t *testing.T) {
	store := newMemoryCache()
	cache := NewCacheService(store, nil, 0, nil, false)

	require.NoError(t, cache.Set(context.Background(), "elearn:test", 1, 0))
	assert.Zero(t, store.sets)
	cache.Invalidate(context.Background())
	assert.Zero(t, store.purges)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	hit, err := nilCache.Get(context.Background(), "elearn:test", new(int))
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceReportsBackendErrors(t *testing.T) {
	store := &failingCache{memoryCache: *newMemoryCache()}
	cache := NewCacheService(store, nil, 0, nil, true)

	hit, err := cache.Get(context.Background(), "elearn:test", new(int))
	assert.Error(t, err)
	assert.False(t, hit)
}
