package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"time"
)

// RedisCacheInterface defines the interface for a Redis L2 cache.
// Redis is optional: a single-instance deployment runs fine on the memory
// cache alone. An L2 only matters for multi-instance deployments where
// session revocation must be shared across processes.
type RedisCacheInterface interface {
	Set(ctx context.Context, key string, value any)
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration)
	Get(ctx context.Context, key string) (any, bool)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
	Close() error
}

// RedisCacheConfig holds the Redis connection configuration.
type RedisCacheConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	DefaultTTL   time.Duration
	PoolSize     int
	MinIdleConns int
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() *RedisCacheConfig {
	return &RedisCacheConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "flashwise:",
		DefaultTTL:   30 * time.Minute,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// RedisConfigFromEnv creates a Redis config from FLASHWISE_CACHE_REDIS_*
// environment variables.
func RedisConfigFromEnv() *RedisCacheConfig {
	config := DefaultRedisConfig()

	if addr := os.Getenv("FLASHWISE_CACHE_REDIS_ADDR"); addr != "" {
		config.Addr = addr
	}
	if password := os.Getenv("FLASHWISE_CACHE_REDIS_PASSWORD"); password != "" {
		config.Password = password
	}
	if prefix := os.Getenv("FLASHWISE_CACHE_REDIS_PREFIX"); prefix != "" {
		config.KeyPrefix = prefix
	}

	return config
}

// IsRedisEnabled reports whether an L2 address is configured.
func IsRedisEnabled() bool {
	return os.Getenv("FLASHWISE_CACHE_REDIS_ADDR") != ""
}

// GenerateCacheKey joins components and appends a short hash so keys from
// user-controlled strings cannot collide with structural keys.
func GenerateCacheKey(components ...string) string {
	key := strings.Join(components, ":")
	return key + ":" + KeyHash(key)
}

// KeyHash returns the first 16 hex chars of the SHA256 of the key.
func KeyHash(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])[:16]
}

// NilRedisCache is a no-op implementation of RedisCacheInterface. It lets
// the tiered cache run without a Redis deployment.
type NilRedisCache struct{}

// NewNilRedisCache creates a no-op Redis cache.
func NewNilRedisCache() *NilRedisCache {
	return &NilRedisCache{}
}

func (*NilRedisCache) Set(context.Context, string, any) {}

func (*NilRedisCache) SetWithTTL(context.Context, string, any, time.Duration) {}

func (*NilRedisCache) Get(context.Context, string) (any, bool) {
	return nil, false
}

func (*NilRedisCache) Delete(context.Context, string) {}

func (*NilRedisCache) Clear(context.Context) {}

func (*NilRedisCache) Close() error {
	return nil
}
