package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores resolved tenant records between requests. Implementations
// must be safe for concurrent use. Entries must never be served past their
// TTL: a lifecycle change becomes visible at most one TTL after it happens,
// or immediately when the key is deleted.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// DefaultCacheSize bounds the default in-memory cache.
const DefaultCacheSize = 1000

type memoryEntry struct {
	key       string
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is the default in-memory implementation: TTL expiry with LRU
// eviction once the size bound is reached. Expired entries are dropped
// lazily on read and swept periodically in the background.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryCache creates an in-memory cache with the default size bound.
func NewMemoryCache() Cache {
	return NewMemoryCacheWithSize(DefaultCacheSize)
}

// NewMemoryCacheWithSize creates an in-memory cache holding at most maxSize
// entries. Non-positive sizes fall back to the default.
func NewMemoryCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}

	c := &memoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()

	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	entry := el.Value.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}

	c.order.MoveToFront(el)
	return entry.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.tenant = t
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	if len(c.entries) >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*memoryEntry).key)
		}
	}

	el := c.order.PushFront(&memoryEntry{
		key:       key,
		tenant:    t,
		expiresAt: time.Now().Add(ttl),
	})
	c.entries[key] = el
}

func (c *memoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

// Close stops the background sweeper and waits for it to finish.
// Safe for repeated calls.
func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, el := range c.entries {
		if now.After(el.Value.(*memoryEntry).expiresAt) {
			c.order.Remove(el)
			delete(c.entries, key)
		}
	}
}

// noopCache disables caching entirely. Every lookup goes to the registry.
type noopCache struct{}

// NewNoopCache creates a cache that never stores anything. Useful for tests
// and for deployments where the registry lookup is cheap enough.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(ctx context.Context, key string) (*Tenant, bool)               { return nil, false }
func (noopCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {}
func (noopCache) Delete(ctx context.Context, key string)                            {}
func (noopCache) Close() error                                                      { return nil }
