package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"fastpai/models"
)

// Cache keeps recent scheduler replies keyed by (city, question) so repeated
// questions over one or many sessions get the same frame back without
// recomputing. Safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[string]item
}

type item struct {
	frame models.InboundFrame
	exp   time.Time
}

var (
	defaultCache *Cache
	once         sync.Once
)

// Default returns the process-wide reply cache.
func Default() *Cache {
	once.Do(func() {
		defaultCache = New()
		go defaultCache.janitor(time.Minute)
	})
	return defaultCache
}

func New() *Cache {
	return &Cache{items: make(map[string]item)}
}

// Get returns the cached frame if present and not expired.
func (c *Cache) Get(key string) (models.InboundFrame, bool) {
	now := time.Now()
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return models.InboundFrame{}, false
	}
	if now.After(it.exp) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return models.InboundFrame{}, false
	}
	return it.frame, true
}

// Set stores a frame with a TTL. ttl<=0 stores nothing.
func (c *Cache) Set(key string, frame models.InboundFrame, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = item{frame: frame, exp: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		now := time.Now()
		c.mu.Lock()
		for k, it := range c.items {
			if now.After(it.exp) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}

// Key builds a compact stable key from parts.
func Key(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return string(h.Sum(nil))
}
