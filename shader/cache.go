package shader

import (
	"container/list"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity is the capacity of a Cache created with capacity <= 0.
const DefaultCacheCapacity = 64

// Cache is an LRU cache of compiled programs keyed by source and options.
// Failed compilations are not cached.
//
// Cache is safe for concurrent use. Compile holds the lock while
// compiling, so concurrent requests for the same program compile it once.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]*list.Element
	lru      *list.List // front is most recently used

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	hash uint64
	key  string
	prog *Program
}

// CacheStats reports cache activity.
type CacheStats struct {
	Hits, Misses, Evictions uint64
	Len                     int
}

// NewCache creates a cache holding up to capacity programs.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		lru:      list.New(),
	}
}

// Compile returns the cached program for source and opts, compiling it on
// a miss.
func (c *Cache) Compile(source string, opts ...CompileOption) (*Program, error) {
	o := defaultCompileOptions()
	for _, opt := range opts {
		opt(&o)
	}
	key := cacheKey(source, o)
	h := fnv.New64a()
	_, _ = h.Write([]byte(key)) // fnv.Write never returns an error
	hash := h.Sum64()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[hash]; ok {
		if e := el.Value.(*cacheEntry); e.key == key {
			c.lru.MoveToFront(el)
			c.hits.Add(1)
			return e.prog, nil
		}
		// Hash collision: the new program replaces the old one.
		c.lru.Remove(el)
		delete(c.entries, hash)
	}
	c.misses.Add(1)

	prog, err := compile(source, o)
	if err != nil {
		return nil, err
	}
	for c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).hash)
		c.evictions.Add(1)
	}
	c.entries[hash] = c.lru.PushFront(&cacheEntry{hash: hash, key: key, prog: prog})
	return prog, nil
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       n,
	}
}

// Clear removes every program. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.lru.Init()
}

func cacheKey(source string, o compileOptions) string {
	var b strings.Builder
	b.WriteString(source)
	fmt.Fprintf(&b, "\x00%s\x00%s\x00%t\x00%t\x00%d.%d",
		o.vertex, o.fragment, o.validate, o.debug, o.spirvVersion.Major, o.spirvVersion.Minor)
	for _, rb := range o.layout.Bindings {
		fmt.Fprintf(&b, "\x00%d:%d", rb.Group, rb.Binding)
	}
	return b.String()
}
