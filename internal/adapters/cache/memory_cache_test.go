package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, maxEntries int) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(maxEntries, time.Hour)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("route_a", 42, time.Minute)

	v, ok := c.Get("route_a")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestMemoryCache_ExpiredIsMiss(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("k", "v", time.Minute)
	clock.Advance(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry should still be live before its TTL elapses")

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should be a miss once its TTL elapses")
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped on read")
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("k", "v", 0)
	clock.Advance(59 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("first", 1, time.Hour)
	c.Set("second", 2, time.Hour)

	// Touch "first" so "second" becomes the LRU entry.
	_, ok := c.Get("first")
	require.True(t, ok)

	c.Set("third", 3, time.Hour)

	_, ok = c.Get("second")
	assert.False(t, ok, "least recently used key should be evicted")
	_, ok = c.Get("first")
	assert.True(t, ok, "recently accessed key should survive")
	_, ok = c.Get("third")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("a", 10, time.Hour)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestMemoryCache_EvictionIsLocalToWrittenPartition(t *testing.T) {
	c, _ := newTestCache(t, 3)

	c.Set("short-1", 1, time.Minute)
	c.Set("long-1", 1, time.Hour)
	c.Set("long-2", 2, time.Hour)

	// "short-1" is the globally oldest entry, but the write goes to the
	// one-hour partition, so that partition's LRU entry is evicted.
	c.Set("long-3", 3, time.Hour)

	_, ok := c.Get("short-1")
	assert.True(t, ok)
	_, ok = c.Get("long-1")
	assert.False(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestMemoryCache_FullCacheReclaimsExpiredBeforeLive(t *testing.T) {
	c, clock := newTestCache(t, 2)

	c.Set("short-1", 1, time.Minute)
	c.Set("long-1", 1, time.Hour)
	clock.Advance(2 * time.Minute)

	// "short-1" has expired unread in another partition, so the write reuses
	// its slot instead of evicting "long-1".
	c.Set("long-2", 2, time.Hour)

	assert.Equal(t, 2, c.Len())
	v, ok := c.Get("long-1")
	require.True(t, ok, "live entry should survive while an expired one is reclaimable")
	assert.Equal(t, 1, v)
	_, ok = c.Get("long-2")
	assert.True(t, ok)
}

func TestMemoryCache_SweepKeepsRecencyOfSurvivors(t *testing.T) {
	c, clock := newTestCache(t, 3)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("gone", 0, time.Minute)
	_, _ = c.Get("a")
	clock.Advance(2 * time.Minute)

	c.Set("c", 3, time.Hour)
	// Full again with only live entries: "b" is the LRU of the hour partition.
	c.Set("d", 4, time.Hour)

	_, ok := c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, "key %q should survive", k)
	}
}

func TestMemoryCache_NewPartitionAtCapacity(t *testing.T) {
	c, _ := newTestCache(t, 2)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)
	c.Set("c", 3, 5*time.Minute)

	assert.Equal(t, 2, c.Len(), "capacity bound is global")
	_, ok := c.Get("c")
	assert.True(t, ok)
	_, ok = c.Get("a")
	assert.False(t, ok, "largest partition gives up its LRU entry")
}

func TestMemoryCache_RewriteUnderNewTTLMovesKey(t *testing.T) {
	c, clock := newTestCache(t, 10)

	c.Set("k", "old", time.Hour)
	c.Set("k", "new", time.Minute)
	assert.Equal(t, 1, c.Len())

	clock.Advance(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok, "the newer, shorter TTL applies")
}

func TestMemoryCache_DeleteAcrossPartitions(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)

	c.Delete("a")
	c.Delete("missing")

	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestMemoryCache_Clear(t *testing.T) {
	c, _ := newTestCache(t, 10)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)
	c.Set("c", 3, 0)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	for _, k := range []string{"a", "b", "c"} {
		_, ok := c.Get(k)
		assert.False(t, ok, "key %q should be gone", k)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(50, time.Hour)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k-%d", i%80)
				ttl := time.Duration(1+w%3) * time.Minute
				c.Set(key, i, ttl)
				c.Get(key)
				if i%17 == 0 {
					c.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
