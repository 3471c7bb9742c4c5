package server

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SymbolCache holds encoded GeoJSON symbol layers keyed by attribute. The
// dataset and view options are fixed for a server's lifetime, so a layer
// only changes when it expires.
type SymbolCache struct {
	lru        *expirable.LRU[string, []byte]
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewSymbolCache creates a cache holding at most maxEntries layers for ttl.
// A non-positive ttl keeps entries until they are evicted.
func NewSymbolCache(maxEntries int, ttl time.Duration) *SymbolCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &SymbolCache{
		lru:        expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		maxEntries: maxEntries,
	}
}

// Get returns the cached layer for attribute, or nil on a miss.
func (c *SymbolCache) Get(attribute string) []byte {
	data, ok := c.lru.Get(attribute)
	if !ok {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return data
}

// Put stores an encoded layer.
func (c *SymbolCache) Put(attribute string, data []byte) {
	c.lru.Add(attribute, data)
}

// Purge drops every entry.
func (c *SymbolCache) Purge() {
	c.lru.Purge()
}

// Stats returns cache performance statistics.
func (c *SymbolCache) Stats() CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    c.lru.Len(),
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}
