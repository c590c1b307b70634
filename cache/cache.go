package cache

import (
	"sync"
	"sync/atomic"
)

// Cache is a generic thread-safe LRU cache.
// When the cache exceeds its capacity, the least recently used entry is
// evicted and passed to the eviction callback.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*cacheEntry[K, V]
	lru      lruList[K]
	capacity int
	onEvict  func(K, V)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

type evicted[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding at most capacity entries.
// A capacity of 0 means unlimited.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*cacheEntry[K, V]),
		capacity: capacity,
	}
}

// OnEvict sets a callback that receives every value leaving the cache:
// evicted by capacity, removed by Delete or Clear, or replaced by Set.
// The callback runs after the cache lock is released.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) *Cache[K, V] {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
	return c
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.lru.moveToFront(entry.node)
	c.hits.Add(1)
	return entry.value, true
}

// Set stores a value in the cache.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	var out []evicted[K, V]
	if existing, ok := c.entries[key]; ok {
		out = append(out, evicted[K, V]{key, existing.value})
		existing.value = value
		c.lru.moveToFront(existing.node)
	} else {
		out = c.insertLocked(key, value)
	}
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, out)
}

// GetOrCreate returns the cached value or creates it.
// create runs under the lock so concurrent callers never create twice.
// If create fails nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.lru.moveToFront(entry.node)
		c.mu.Unlock()
		c.hits.Add(1)
		return entry.value, nil
	}
	c.misses.Add(1)

	value, err := create()
	if err != nil {
		c.mu.Unlock()
		var zero V
		return zero, err
	}
	out := c.insertLocked(key, value)
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, out)
	return value, nil
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.lru.remove(entry.node)
	delete(c.entries, key)
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, []evicted[K, V]{{key, entry.value}})
	return true
}

// Clear removes all entries from the cache, oldest first.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	out := make([]evicted[K, V], 0, len(c.entries))
	for n := c.lru.oldest(); n != nil; n = n.prev {
		out = append(out, evicted[K, V]{n.key, c.entries[n.key].value})
	}
	c.entries = make(map[K]*cacheEntry[K, V])
	c.lru = lruList[K]{}
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, out)
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the capacity of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}

// insertLocked adds a new entry and evicts down to capacity.
// Caller must hold c.mu.
func (c *Cache[K, V]) insertLocked(key K, value V) []evicted[K, V] {
	node := c.lru.pushFront(key)
	c.entries[key] = &cacheEntry[K, V]{value: value, node: node}

	var out []evicted[K, V]
	for c.capacity > 0 && c.lru.len > c.capacity {
		oldest := c.lru.oldest()
		c.lru.remove(oldest)
		e := c.entries[oldest.key]
		delete(c.entries, oldest.key)
		c.evictions.Add(1)
		out = append(out, evicted[K, V]{oldest.key, e.value})
	}
	return out
}

func notify[K comparable, V any](fn func(K, V), out []evicted[K, V]) {
	if fn == nil {
		return
	}
	for _, e := range out {
		fn(e.key, e.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries (0 = unlimited).
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries evicted by capacity.
	Evictions uint64
}
