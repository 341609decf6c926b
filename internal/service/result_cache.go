package service

import (
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/pitwall/internal/metrics"
)

// ResultCache provides in-memory caching of seeded run results keyed by fingerprint
type ResultCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewResultCache creates a new result cache
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached result
func (rc *ResultCache) Get(fingerprint string) (*RunResult, bool) {
	if item, found := rc.cache.Get(fingerprint); found {
		if result, ok := item.(*RunResult); ok {
			rc.hitCount.Add(1)
			metrics.RecordCacheHit()
			return result, true
		}
	}
	rc.missCount.Add(1)
	return nil, false
}

// Set stores a result
func (rc *ResultCache) Set(fingerprint string, result *RunResult) {
	rc.cache.Set(fingerprint, result, rc.ttl)
}

// Flush removes every entry
func (rc *ResultCache) Flush() {
	rc.cache.Flush()
}

// Stats returns hit and miss counts
func (rc *ResultCache) Stats() (hits, misses uint64) {
	return rc.hitCount.Load(), rc.missCount.Load()
}
