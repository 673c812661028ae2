package thumbnail

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/psdplots/plot-catalog-service/internal/observability"
	"golang.org/x/sync/singleflight"
)

// CacheOptions bounds the thumbnail cache. The zero value keeps every entry
// forever.
type CacheOptions struct {
	MaxEntries int           // 0 = unbounded
	TTL        time.Duration // 0 = never expires
	Clock      clockwork.Clock
}

// CachedResolver wraps a Resolver with an in-memory cache keyed by the exact
// node path. Absent thumbnails are cached; errors are not.
type CachedResolver struct {
	inner   Resolver
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics

	genMu sync.Mutex
	epoch uint64            // bumped by Purge
	gens  map[string]uint64 // bumped by Invalidate
}

// generation identifies the cache state a scan started from. A scan whose
// generation changed before it finished must not store its result.
type generation struct {
	epoch uint64
	key   uint64
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner Resolver, opts CacheOptions, metrics *observability.Metrics) *CachedResolver {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache(opts.MaxEntries, opts.TTL, opts.Clock),
		metrics: metrics,
		gens:    make(map[string]uint64),
	}
}

type result struct {
	choice domain.ThumbnailChoice
	ok     bool
}

// Resolve returns the cached thumbnail of path, scanning on a miss.
// Concurrent misses on the same path share one scan. The shared scan is not
// cancelled when a caller goes away; each caller only stops waiting.
func (c *CachedResolver) Resolve(ctx context.Context, path string) (domain.ThumbnailChoice, bool, error) {
	if r, ok := c.cache.get(path); ok {
		c.metrics.ThumbnailCache.WithLabelValues("hit").Inc()
		return r.choice, r.ok, nil
	}
	c.metrics.ThumbnailCache.WithLabelValues("miss").Inc()

	scanCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(path, func() (any, error) {
		if r, ok := c.cache.get(path); ok {
			return r, nil
		}
		gen := c.generation(path)
		choice, ok, err := c.inner.Resolve(scanCtx, path)
		if err != nil {
			return nil, err
		}
		r := result{choice: choice, ok: ok}
		c.putIfCurrent(path, r, gen)
		return r, nil
	})

	select {
	case <-ctx.Done():
		return domain.ThumbnailChoice{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.ThumbnailChoice{}, false, res.Err
		}
		r := res.Val.(result)
		return r.choice, r.ok, nil
	}
}

func (c *CachedResolver) generation(path string) generation {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return generation{epoch: c.epoch, key: c.gens[path]}
}

// putIfCurrent stores r unless path was invalidated since gen was taken.
func (c *CachedResolver) putIfCurrent(path string, r result, gen generation) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if gen != (generation{epoch: c.epoch, key: c.gens[path]}) {
		return
	}
	c.cache.put(path, r)
}

// Invalidate drops the cached thumbnail of path. A scan of path already in
// flight will not store its result, and later callers start a fresh scan.
// It reports whether an entry was removed.
func (c *CachedResolver) Invalidate(path string) bool {
	c.genMu.Lock()
	c.gens[path]++
	c.group.Forget(path)
	removed := c.cache.delete(path)
	c.genMu.Unlock()

	if !removed {
		return false
	}
	c.metrics.CacheInvalidations.Inc()
	return true
}

// Purge drops every cached thumbnail and discards scans in flight.
func (c *CachedResolver) Purge() {
	c.genMu.Lock()
	c.epoch++
	clear(c.gens)
	n := c.cache.clear()
	c.genMu.Unlock()

	c.metrics.CacheInvalidations.Add(float64(n))
}

// Len returns the number of cached entries.
func (c *CachedResolver) Len() int {
	return c.cache.len()
}

// lruCache is a thread-safe LRU cache with optional size bound and TTL.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   result
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return result{}, false
	}
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		c.unlink(e)
		return result{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.clock.Now().Add(c.ttl)
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(e)
	return true
}

func (c *lruCache) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*entry)
	c.head, c.tail = nil, nil
	return n
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) unlink(e *entry) {
	delete(c.entries, e.key)
	c.remove(e)
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	c.unlink(c.tail)
}
