package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

// shardCount spreads keys over independent locks so unrelated batches do
// not serialize on one mutex. Must be a power of two.
const shardCount = 32

// entry holds a cached value with its creation time.
type entry struct {
	value     string
	createdAt time.Time
}

// shard is one lock-guarded bucket of the cache.
type shard struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// MemoryCache is a sharded in-process fingerprint cache. Entries never
// expire and are never evicted; this is a correctness/dedup cache bounded
// by the working set of a process, not a memory-bounded cache.
type MemoryCache struct {
	shards [shardCount]*shard
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	for i := range c.shards {
		c.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return c
}

func (c *MemoryCache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()&(shardCount-1)]
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(key string) (string, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Put stores a value unless the key is already present. First committed
// write wins regardless of call order.
func (c *MemoryCache) Put(key, value string) error {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return nil
	}
	s.entries[key] = entry{value: value, createdAt: time.Now()}
	return nil
}

// Contains reports whether the key holds a value.
func (c *MemoryCache) Contains(key string) bool {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[key]
	return ok
}

// Len returns the number of entries in the cache.
func (c *MemoryCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]entry)
		s.mu.Unlock()
	}
}

// Entries returns all entries as key-value pairs. Used for cache export.
func (c *MemoryCache) Entries() map[string]string {
	result := make(map[string]string, c.Len())
	for _, s := range c.shards {
		s.mu.RLock()
		for key, e := range s.entries {
			result[key] = e.value
		}
		s.mu.RUnlock()
	}
	return result
}

// Verify MemoryCache implements TranslationCache
var _ TranslationCache = (*MemoryCache)(nil)
