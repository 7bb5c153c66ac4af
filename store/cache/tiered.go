package cache

import (
	"context"
	"time"
)

// TieredCache implements a three-tier caching strategy:
//   - L1: in-memory cache (fast, per-process, default)
//   - L2: Redis (shared across instances, optional)
//   - L3: database callback (slow, authoritative)
//
// L2 stays disabled unless FLASHWISE_CACHE_REDIS_ADDR is set.
type TieredCache struct {
	l1        *Cache
	l2        RedisCacheInterface
	l1Enabled bool
	l2Enabled bool
}

// L3Fetcher is the function to fetch data from the database (L3).
type L3Fetcher func(ctx context.Context, key string) (any, error)

// TieredCacheConfig holds the configuration for the tiered cache.
type TieredCacheConfig struct {
	L1MaxItems int
	L1TTL      time.Duration
	L2TTL      time.Duration
	EnableL1   bool
	EnableL2   bool
}

// DefaultTieredConfig returns the default tiered cache configuration:
// L1 enabled, L2 auto-enabled when Redis is configured.
func DefaultTieredConfig() *TieredCacheConfig {
	return &TieredCacheConfig{
		L1MaxItems: 1000,
		L1TTL:      30 * time.Minute,
		L2TTL:      30 * time.Minute,
		EnableL1:   true,
		EnableL2:   IsRedisEnabled(),
	}
}

// NewTieredCache creates a new three-tier cache.
func NewTieredCache(config *TieredCacheConfig) (*TieredCache, error) {
	if config == nil {
		config = DefaultTieredConfig()
	}

	tc := &TieredCache{
		l1Enabled: config.EnableL1,
		l2Enabled: config.EnableL2,
	}

	if config.EnableL1 {
		tc.l1 = New(Config{
			DefaultTTL:      config.L1TTL,
			CleanupInterval: 1 * time.Minute,
			MaxItems:        config.L1MaxItems,
		})
	}

	if config.EnableL2 {
		// The wire-level Redis client is pluggable; the default build
		// ships the no-op implementation.
		tc.l2 = NewNilRedisCache()
	}

	return tc, nil
}

// Get retrieves a value, checking L1, then L2, then L3.
func (t *TieredCache) Get(ctx context.Context, key string, fetcher L3Fetcher) (any, bool) {
	if t.l1Enabled && t.l1 != nil {
		if value, found := t.l1.Get(ctx, key); found {
			return value, true
		}
	}

	if t.l2Enabled && t.l2 != nil {
		if value, found := t.l2.Get(ctx, key); found {
			// Promote to L1
			if t.l1Enabled && t.l1 != nil {
				t.l1.Set(ctx, key, value)
			}
			return value, true
		}
	}

	if fetcher != nil {
		value, err := fetcher(ctx, key)
		if err != nil {
			return nil, false
		}
		t.Set(ctx, key, value)
		return value, true
	}

	return nil, false
}

// Set stores a value in both L1 and L2.
func (t *TieredCache) Set(ctx context.Context, key string, value any) {
	if t.l1Enabled && t.l1 != nil {
		t.l1.Set(ctx, key, value)
	}
	if t.l2Enabled && t.l2 != nil {
		t.l2.Set(ctx, key, value)
	}
}

// SetWithTTL stores a value with a custom TTL.
func (t *TieredCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) {
	if t.l1Enabled && t.l1 != nil {
		t.l1.SetWithTTL(ctx, key, value, ttl)
	}
	if t.l2Enabled && t.l2 != nil {
		t.l2.SetWithTTL(ctx, key, value, ttl)
	}
}

// Delete removes a value from both L1 and L2.
func (t *TieredCache) Delete(ctx context.Context, key string) {
	if t.l1Enabled && t.l1 != nil {
		t.l1.Delete(ctx, key)
	}
	if t.l2Enabled && t.l2 != nil {
		t.l2.Delete(ctx, key)
	}
}

// Clear clears all tiers.
func (t *TieredCache) Clear(ctx context.Context) {
	if t.l1Enabled && t.l1 != nil {
		t.l1.Clear(ctx)
	}
	if t.l2Enabled && t.l2 != nil {
		t.l2.Clear(ctx)
	}
}

// Close closes all cache tiers.
func (t *TieredCache) Close() error {
	if t.l2 != nil {
		if err := t.l2.Close(); err != nil {
			return err
		}
	}
	if t.l1 != nil {
		t.l1.Close()
	}
	return nil
}
