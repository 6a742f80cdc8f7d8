// package cache implements the in-process TTL cache fronting catalog queries.
//
// Entries live for a fixed process-wide TTL. A background sweep removes
// expired entries periodically, and a coarse size bound evicts the
// oldest-expiring half of the entries whenever an insert pushes the cache
// over capacity. Cache operations never fail; a miss is a normal outcome.
package cache

import (
	"sort"
	"sync"
	"time"
)

// Process-wide defaults, applied by [New] for zero Config fields.
const (
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
	DefaultCapacity      = 1000
)

// Config controls cache behavior. All fields are optional.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Capacity      int
	Clock         func() time.Time // test hook, defaults to time.Now
}

type entry struct {
	value     any
	expiresAt time.Time
	seq       uint64 // insertion order, tie-break for eviction
}

// Cache is a bounded key/value map with per-entry expiry.
//
// Safe for concurrent use. Construct with [New]; call [Cache.Start] to run
// the background sweep and [Cache.Stop] to halt it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	seq     uint64

	ttl      time.Duration
	sweep    time.Duration
	capacity int
	now      func() time.Time

	done chan struct{}
}

// New creates a Cache with the given configuration.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Cache{
		entries:  make(map[string]entry),
		ttl:      cfg.TTL,
		sweep:    cfg.SweepInterval,
		capacity: cfg.Capacity,
		now:      cfg.Clock,
	}
}

// Set stores value under key with expiry TTL from now, overwriting any
// existing entry. If the insert pushes the cache over capacity, the
// oldest-expiring half of all entries is evicted.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
		seq:       c.seq,
	}

	if len(c.entries) > c.capacity {
		c.evictLocked()
	}
}

// Get returns the value stored under key if it has not expired.
// Expired entries are removed lazily and reported as misses.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.entries[key]; ok && cur.seq == e.seq {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Has reports whether a live entry exists for key, without returning it.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Clear removes all entries.
//
// TODO: scope-limited invalidation by key prefix, so pack creation can
// invalidate only catalog list queries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of physically present entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Start launches the background sweep goroutine. Calling Start on a
// running cache is a no-op.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return
	}
	c.done = make(chan struct{})
	go c.run(c.done)
}

// Stop halts the background sweep. Safe to call on a stopped cache.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return
	}
	close(c.done)
	c.done = nil
}

func (c *Cache) run(done chan struct{}) {
	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-done:
			return
		}
	}
}

// Sweep deletes all expired entries. Called periodically by the
// background goroutine; exported so tests and callers can force a pass.
func (c *Cache) Sweep() {
	now := c.now()
	c.mu.Lock()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// evictLocked removes the oldest-expiring half of all entries.
//
// This approximates recency via TTL assignment order rather than access
// order: with a uniform TTL, the entry expiring first is the one written
// longest ago. Ties on expiry fall back to insertion order so the most
// recent insert survives.
func (c *Cache) evictLocked() {
	type victim struct {
		key       string
		expiresAt time.Time
		seq       uint64
	}

	candidates := make([]victim, 0, len(c.entries))
	for key, e := range c.entries {
		candidates = append(candidates, victim{key, e.expiresAt, e.seq})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].expiresAt.Equal(candidates[j].expiresAt) {
			return candidates[i].seq < candidates[j].seq
		}
		return candidates[i].expiresAt.Before(candidates[j].expiresAt)
	})

	for _, v := range candidates[:len(candidates)/2] {
		delete(c.entries, v.key)
	}
}
