package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxSizeMB int64) *MemoryCache {
	t.Helper()
	mc := NewMemoryCache(maxSizeMB)
	t.Cleanup(mc.Stop)
	return mc
}

func TestMemoryCacheSetGet(t *testing.T) {
	mc := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "key", []byte("value"), time.Minute))

	got, ok := mc.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
	assert.True(t, mc.Has(ctx, "key"))

	_, ok = mc.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := mc.Get(ctx, "short")
	assert.False(t, ok, "expired entry must miss")
	assert.False(t, mc.Has(ctx, "short"))
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	mc := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, mc.Delete(ctx, "a"))
	_, ok := mc.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, mc.Clear(ctx))
	_, ok = mc.Get(ctx, "b")
	assert.False(t, ok)
	assert.Zero(t, mc.Stats().Size)
}

func TestMemoryCacheOverwriteAdjustsSize(t *testing.T) {
	mc := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("aaaaaaaaaa"), time.Minute))
	first := mc.Stats().Size

	require.NoError(t, mc.Set(ctx, "k", []byte("b"), time.Minute))
	assert.Less(t, mc.Stats().Size, first, "replacing with a smaller value shrinks usage")
}

func TestMemoryCacheEvictsWhenFull(t *testing.T) {
	// 1 MB budget, fill with ~1 MB then add more
	mc := newTestCache(t, 1)
	ctx := context.Background()

	payload := make([]byte, 256*1024)
	for i := 0; i < 4; i++ {
		require.NoError(t, mc.Set(ctx, fmt.Sprintf("big-%d", i), payload, time.Minute))
	}
	require.NoError(t, mc.Set(ctx, "one-more", payload, time.Minute))

	stats := mc.Stats()
	assert.Positive(t, stats.Evictions, "inserting past the budget must evict")
	assert.LessOrEqual(t, stats.Size, stats.MaxSize)
}

func TestMemoryCacheSweepDropsExpired(t *testing.T) {
	mc := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "old", []byte("v"), time.Nanosecond))
	require.NoError(t, mc.Set(ctx, "live", []byte("v"), time.Minute))

	mc.sweep(time.Now().Add(time.Second))

	assert.False(t, mc.Has(ctx, "old"))
	assert.True(t, mc.Has(ctx, "live"))
	assert.Positive(t, mc.Stats().Evictions)
}

func TestMemoryCacheStopIsIdempotent(t *testing.T) {
	mc := NewMemoryCache(1)
	mc.Stop()
	mc.Stop()
}

func TestMemoryCacheStats(t *testing.T) {
	mc := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	mc.Get(ctx, "k")
	mc.Get(ctx, "nope")
	require.NoError(t, mc.Delete(ctx, "k"))

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Deletes)
}
