package cache

import (
	"context"
	"sync"
	"time"
)

const (
	defaultTTL    = 30 * time.Minute
	sweepInterval = time.Minute
)

// MemoryCache is an in-process Cache bounded by a byte budget. Expired
// entries drop lazily on access and in a periodic sweep; an insert that would
// blow the budget evicts the entries closest to expiry first, since those
// have the least remaining value.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	budget  int64
	used    int64
	stats   Stats

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type memEntry struct {
	payload   []byte
	expiresAt time.Time
	cost      int64
}

// NewMemoryCache creates a memory cache bounded to maxSizeMB megabytes.
// Zero or negative means unbounded.
func NewMemoryCache(maxSizeMB int64) *MemoryCache {
	mc := &MemoryCache{
		entries: make(map[string]*memEntry),
		budget:  maxSizeMB << 20,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go mc.sweepLoop()
	return mc
}

// Get returns the payload for key, dropping it when expired
func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			mc.remove(key, e)
		}
		mc.stats.Misses++
		return nil, false
	}
	mc.stats.Hits++
	return e.payload, true
}

// Set stores the payload under key for ttl
func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	e := &memEntry{
		payload:   value,
		expiresAt: time.Now().Add(ttl),
		cost:      int64(len(key) + len(value)),
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if old, exists := mc.entries[key]; exists {
		mc.used -= old.cost
	}
	mc.makeRoom(e.cost)
	mc.entries[key] = e
	mc.used += e.cost
	mc.stats.Sets++
	return nil
}

// Delete drops the key if present
func (mc *MemoryCache) Delete(_ context.Context, key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if e, ok := mc.entries[key]; ok {
		mc.remove(key, e)
		mc.stats.Deletes++
	}
	return nil
}

// Clear drops every entry
func (mc *MemoryCache) Clear(_ context.Context) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.entries = make(map[string]*memEntry)
	mc.used = 0
	return nil
}

// Has reports whether key holds an unexpired entry
func (mc *MemoryCache) Has(_ context.Context, key string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.entries[key]
	return ok && time.Now().Before(e.expiresAt)
}

// Stats returns a snapshot of hit/miss counters and current usage
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	s := mc.stats
	s.Size = mc.used
	s.MaxSize = mc.budget
	return s
}

// Stop ends the sweep goroutine and waits for it; safe to call repeatedly
func (mc *MemoryCache) Stop() {
	mc.stopOnce.Do(func() {
		close(mc.stop)
		<-mc.done
	})
}

func (mc *MemoryCache) sweepLoop() {
	defer close(mc.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.sweep(time.Now())
		case <-mc.stop:
			return
		}
	}
}

// sweep drops every entry expired as of now
func (mc *MemoryCache) sweep(now time.Time) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for key, e := range mc.entries {
		if now.After(e.expiresAt) {
			mc.remove(key, e)
			mc.stats.Evictions++
		}
	}
}

// remove deletes the entry and releases its cost. Caller holds mu.
func (mc *MemoryCache) remove(key string, e *memEntry) {
	delete(mc.entries, key)
	mc.used -= e.cost
}

// makeRoom evicts until cost fits the budget, expired entries first and then
// by soonest expiry. Caller holds mu.
func (mc *MemoryCache) makeRoom(cost int64) {
	if mc.budget <= 0 {
		return
	}

	now := time.Now()
	for key, e := range mc.entries {
		if mc.used+cost <= mc.budget {
			return
		}
		if now.After(e.expiresAt) {
			mc.remove(key, e)
			mc.stats.Evictions++
		}
	}

	for mc.used+cost > mc.budget && len(mc.entries) > 0 {
		var victimKey string
		var victim *memEntry
		for key, e := range mc.entries {
			if victim == nil || e.expiresAt.Before(victim.expiresAt) {
				victimKey, victim = key, e
			}
		}
		mc.remove(victimKey, victim)
		mc.stats.Evictions++
	}
}
