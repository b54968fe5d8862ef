package analytics

import (
	"sync"
	"time"
)

const (
	cacheKeyOperation = "operation"
	cacheKeySource    = "source"
)

type cacheEntry struct {
	stats       []Stats
	lastRefresh time.Time
}

// statsCache keeps recent aggregates so repeated redraws skip the query
type statsCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

func (c *statsCache) get(key string) ([]Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.lastRefresh) > c.ttl {
		return nil, false
	}
	return entry.stats, true
}

func (c *statsCache) set(key string, stats []Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{stats: stats, lastRefresh: time.Now()}
}

func (c *statsCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
}
