package embedder

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache stores computed embeddings keyed by text content.
// Implementations must be safe for concurrent use; entries are write-once
// per provider and model, so last-writer-wins on a race is acceptable.
type Cache interface {
	// Get returns the cached vector and true if present.
	Get(key string) ([]float32, bool)

	// Set stores a vector under the key.
	Set(key string, vector []float32)

	// Close releases any resources held by the cache.
	Close() error
}

// CacheKey derives the cache key for a text under a given model. Keys hash
// the content so arbitrarily long texts map to fixed-size keys, and two
// models never share an entry.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// MemoryCache is an unbounded in-memory cache. It is the default cache layer.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

func (c *MemoryCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.entries[key]
	return vector, ok
}

func (c *MemoryCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = vector
}

func (c *MemoryCache) Close() error {
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LRUCache bounds memory by evicting the least recently used entries.
type LRUCache struct {
	inner *lru.Cache[string, []float32]
}

// NewLRUCache creates a cache holding at most size entries.
func NewLRUCache(size int) (*LRUCache, error) {
	inner, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{inner: inner}, nil
}

func (c *LRUCache) Get(key string) ([]float32, bool) {
	return c.inner.Get(key)
}

func (c *LRUCache) Set(key string, vector []float32) {
	c.inner.Add(key, vector)
}

func (c *LRUCache) Close() error {
	return nil
}
