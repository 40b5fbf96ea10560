package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	DefaultMaxEntries = 1000
	DefaultTTL        = time.Hour
)

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// MemoryCache is a thread-safe in-process TTL+LRU cache implementing ports.Cache.
//
// Entries are partitioned by TTL: one LRU list per distinct TTL requested,
// plus the default partition. The capacity bound is global (at most maxEntries
// stored entries across all partitions), but eviction is local: a write that
// would exceed capacity evicts the least recently used entry of the partition
// being written. Expired entries are dropped lazily when read, and swept
// from every partition when a write finds the cache full.
//
// A single mutex serializes all operations, including reads (a hit moves the
// entry to the front of its LRU list).
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	partitions map[time.Duration]*simplelru.LRU[string, memoryEntry]
	now        func() time.Time
}

func NewMemoryCache(maxEntries int, defaultTTL time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	c := &MemoryCache{
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		partitions: make(map[time.Duration]*simplelru.LRU[string, memoryEntry]),
		now:        time.Now,
	}
	c.partitionLocked(defaultTTL)

	return c
}

// Get returns the live value stored under key.
func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for ttl, p := range c.partitions {
		e, ok := p.Get(key)
		if !ok {
			continue
		}
		if !now.Before(e.expiresAt) {
			p.Remove(key)
			c.dropIfEmptyLocked(ttl)
			return nil, false
		}
		return e.value, true
	}

	return nil, false
}

// Set stores value under key until now+ttl.
func (c *MemoryCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A key lives in exactly one partition; rewriting under a new TTL moves it.
	for d, other := range c.partitions {
		if d != ttl && other.Remove(key) {
			c.dropIfEmptyLocked(d)
		}
	}

	now := c.now()
	p := c.partitionLocked(ttl)
	if !p.Contains(key) && c.lenLocked() >= c.maxEntries {
		// Expired entries give up their slots before any live entry does.
		c.sweepExpiredLocked(now)
		if c.lenLocked() >= c.maxEntries {
			c.evictLocked(ttl)
		}
	}

	p.Add(key, memoryEntry{value: value, expiresAt: now.Add(ttl)})
}

// Delete removes key from every partition.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ttl, p := range c.partitions {
		if p.Remove(key) {
			c.dropIfEmptyLocked(ttl)
		}
	}
}

// Clear empties all partitions.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ttl, p := range c.partitions {
		p.Purge()
		c.dropIfEmptyLocked(ttl)
	}
}

// Len reports stored entries across all partitions, including expired
// entries that have not been read since they expired.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lenLocked()
}

func (c *MemoryCache) lenLocked() int {
	n := 0
	for _, p := range c.partitions {
		n += p.Len()
	}
	return n
}

func (c *MemoryCache) partitionLocked(ttl time.Duration) *simplelru.LRU[string, memoryEntry] {
	if p, ok := c.partitions[ttl]; ok {
		return p
	}

	// Size is only an upper bound here; the global bound is enforced in Set.
	p, err := simplelru.NewLRU[string, memoryEntry](c.maxEntries, nil)
	if err != nil {
		// NewLRU only fails for non-positive sizes, which the constructor rules out.
		panic(err)
	}
	c.partitions[ttl] = p
	return p
}

// sweepExpiredLocked removes every expired entry. Peek keeps recency intact
// for the survivors.
func (c *MemoryCache) sweepExpiredLocked(now time.Time) {
	for ttl, p := range c.partitions {
		for _, k := range p.Keys() {
			if e, ok := p.Peek(k); ok && !now.Before(e.expiresAt) {
				p.Remove(k)
			}
		}
		c.dropIfEmptyLocked(ttl)
	}
}

// evictLocked frees one slot, preferring the LRU entry of the written
// partition. A freshly created partition has nothing to evict, so the
// largest partition gives up its LRU entry instead.
func (c *MemoryCache) evictLocked(ttl time.Duration) {
	if p := c.partitions[ttl]; p != nil && p.Len() > 0 {
		p.RemoveOldest()
		return
	}

	var (
		victim    time.Duration
		victimLen int
	)
	for d, p := range c.partitions {
		if p.Len() > victimLen {
			victim, victimLen = d, p.Len()
		}
	}
	if victimLen == 0 {
		return
	}

	c.partitions[victim].RemoveOldest()
	c.dropIfEmptyLocked(victim)
}

func (c *MemoryCache) dropIfEmptyLocked(ttl time.Duration) {
	if ttl == c.defaultTTL {
		return
	}
	if p, ok := c.partitions[ttl]; ok && p.Len() == 0 {
		delete(c.partitions, ttl)
	}
}
