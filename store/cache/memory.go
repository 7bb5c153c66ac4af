package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Config holds the settings for an in-memory cache.
type Config struct {
	// DefaultTTL is applied to entries set without an explicit TTL.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept. 0 disables
	// the background sweeper; expired entries are then dropped lazily.
	CleanupInterval time.Duration
	// MaxItems bounds the cache size; the least recently used entry is
	// evicted when the bound is hit.
	MaxItems int
	// OnEviction, when set, is invoked for every evicted or expired entry.
	OnEviction func(key string, value any)
}

// Cache is an in-memory LRU cache with TTL support. It is the L1 tier of
// the store caches and safe for concurrent use.
type Cache struct {
	config Config

	mu    sync.Mutex
	items map[string]*item
	order *list.List

	stopOnce sync.Once
	stop     chan struct{}
}

type item struct {
	key       string
	value     any
	expiresAt time.Time
	element   *list.Element
}

// New creates a cache and starts its cleanup goroutine when a cleanup
// interval is configured.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.MaxItems <= 0 {
		config.MaxItems = 1000
	}

	c := &Cache{
		config: config,
		items:  make(map[string]*item),
		order:  list.New(),
		stop:   make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}

	return c
}

// Get retrieves a value from the cache.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.removeItem(it)
		return nil, false
	}

	c.order.MoveToFront(it.element)
	return it.value, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetWithTTL(ctx, key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		it.value = value
		it.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(it.element)
		return
	}

	it := &item{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	it.element = c.order.PushFront(it)
	c.items[key] = it

	for len(c.items) > c.config.MaxItems {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.removeItem(back.Value.(*item))
	}
}

// Delete removes a value from the cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		c.removeItem(it)
	}
}

// Clear removes all entries.
func (c *Cache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		c.removeItem(it)
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the cleanup goroutine. The cache stays usable afterwards.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Cache) removeItem(it *item) {
	c.order.Remove(it.element)
	delete(c.items, it.key)
	if c.config.OnEviction != nil {
		c.config.OnEviction(it.key, it.value)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items {
		if now.After(it.expiresAt) {
			c.removeItem(it)
		}
	}
}
