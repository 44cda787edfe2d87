package rbac

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies one (role, resource, permission) decision. Using a
// comparable struct as the key means two distinct triples can never alias
// the same cache slot, whatever characters their components contain.
type cacheKey struct {
	role       string
	resource   string
	permission string
}

// cacheEntry is a cached decision. It is live only while its version stamp
// matches the cache's current version and its expiry has not passed.
type cacheEntry struct {
	allowed   bool
	expiresAt time.Time
	version   uint64
}

// CacheStats reports the observable state of the decision cache.
type CacheStats struct {
	Enabled bool `json:"enabled"`
	Size    int  `json:"size"`
}

// decisionCache is a bounded LRU of authorization decisions with per-entry
// TTL. Expired or version-stale entries are treated as misses and evicted
// lazily on read; there is no background sweeper.
type decisionCache struct {
	entries *lru.Cache[cacheKey, cacheEntry]
	ttl     time.Duration
	version atomic.Uint64
	now     func() time.Time
}

// newDecisionCache creates a cache holding at most maxSize decisions, each
// valid for ttl after being set.
func newDecisionCache(maxSize int, ttl time.Duration, now func() time.Time) *decisionCache {
	// lru.New only fails for a non-positive size, which the options layer
	// already rejects.
	entries, err := lru.New[cacheKey, cacheEntry](maxSize)
	if err != nil {
		panic(err)
	}
	return &decisionCache{
		entries: entries,
		ttl:     ttl,
		now:     now,
	}
}

// get returns the cached decision for a triple, if one is live. A stale
// version stamp or a passed expiry is a miss, and the entry is dropped.
func (c *decisionCache) get(role, resource, permission string) (bool, bool) {
	if c == nil {
		return false, false
	}

	key := cacheKey{role: role, resource: resource, permission: permission}
	entry, ok := c.entries.Get(key)
	if !ok {
		return false, false
	}
	if entry.version != c.version.Load() || c.now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return false, false
	}
	return entry.allowed, true
}

// set stores a decision stamped with the given version. A write stamped
// with a version read before a concurrent purge is silently discarded on
// the next get, so stale in-flight results never outlive a purge.
func (c *decisionCache) set(role, resource, permission string, allowed bool, version uint64) {
	if c == nil {
		return
	}
	c.entries.Add(cacheKey{role: role, resource: resource, permission: permission}, cacheEntry{
		allowed:   allowed,
		expiresAt: c.now().Add(c.ttl),
		version:   version,
	})
}

// currentVersion returns the version stamp to attach to writes resolved
// against the currently visible configuration.
func (c *decisionCache) currentVersion() uint64 {
	if c == nil {
		return 0
	}
	return c.version.Load()
}

// purge empties the cache and bumps the version counter.
func (c *decisionCache) purge() {
	if c == nil {
		return
	}
	c.version.Add(1)
	c.entries.Purge()
}

// stats reports the cache state. A nil cache reports itself as disabled.
func (c *decisionCache) stats() CacheStats {
	if c == nil {
		return CacheStats{Enabled: false, Size: 0}
	}
	return CacheStats{Enabled: true, Size: c.entries.Len()}
}
