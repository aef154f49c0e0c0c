// Package enrichment holds the optional external adapters: the Places
// address/geocode lookup and the text-completion attribute extractor. Both
// are best effort; a failing adapter leaves the event as parsed and never
// aborts a batch.
package enrichment

import (
	"sync"
	"time"
)

// PlaceResult is one resolved place: a formatted address plus coordinates,
// and the provider's display name for the venue.
type PlaceResult struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

// PlaceCache caches place lookups by query string to bound external call
// volume. Entries expire after the TTL; when the cache is full the oldest
// entry is evicted. Negative results are cached too, so a query that found
// nothing is not retried within the TTL.
type PlaceCache struct {
	mu      sync.RWMutex
	entries map[string]placeEntry
	ttl     time.Duration
	maxSize int
}

type placeEntry struct {
	result   *PlaceResult // nil for a cached miss
	storedAt time.Time
}

// NewPlaceCache creates a cache with the given TTL and entry bound.
func NewPlaceCache(ttl time.Duration, maxSize int) *PlaceCache {
	return &PlaceCache{
		entries: make(map[string]placeEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns the cached result for a query. The second value reports
// whether the query was cached at all; a (nil, true) return is a cached
// negative lookup.
func (c *PlaceCache) Get(query string) (*PlaceResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[query]
	c.mu.RUnlock()

	if !ok || time.Since(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.result, true
}

// Put stores a lookup result, evicting the oldest entry if the cache is full.
func (c *PlaceCache) Put(query string, result *PlaceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		if _, exists := c.entries[query]; !exists {
			c.evictOldestLocked()
		}
	}
	c.entries[query] = placeEntry{result: result, storedAt: time.Now()}
}

// Len returns the number of cached queries.
func (c *PlaceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *PlaceCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
