package store

import (
	"context"
	"strconv"
	"time"

	"github.com/flashwise/flashwise/internal/profile"
	"github.com/flashwise/flashwise/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches. Users ride the tiered cache: they are resolved on every
	// authenticated request, and an optional Redis L2 keeps lookups warm
	// across instances.
	instanceSettingCache *cache.Cache
	userCache            *cache.TieredCache
	userSettingCache     *cache.Cache
	ofMatrixCache        *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	// The OF matrix is hit on every review; keep cells around longer.
	ofCacheConfig := cacheConfig
	ofCacheConfig.DefaultTTL = 30 * time.Minute
	ofCacheConfig.MaxItems = 4000

	userCache, _ := cache.NewTieredCache(cache.DefaultTieredConfig())

	return &Store{
		driver:               driver,
		profile:              profile,
		cacheConfig:          cacheConfig,
		instanceSettingCache: cache.New(cacheConfig),
		userCache:            userCache,
		userSettingCache:     cache.New(cacheConfig),
		ofMatrixCache:        cache.New(ofCacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.instanceSettingCache.Close()
	_ = s.userCache.Close()
	s.userSettingCache.Close()
	s.ofMatrixCache.Close()

	return s.driver.Close()
}

// Ping checks the underlying database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.GetDB().PingContext(ctx)
}

func cacheKey(id int32) string {
	return strconv.Itoa(int(id))
}
