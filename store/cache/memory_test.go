package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute, MaxItems: 10})
	defer c.Close()

	c.Set(ctx, "a", 1)
	value, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 1, value)

	_, ok = c.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute, MaxItems: 10})
	defer c.Close()

	c.SetWithTTL(ctx, "short", "v", 10*time.Millisecond)
	_, ok := c.Get(ctx, "short")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get(ctx, "short")
	assert.False(t, ok, "expired entry must be dropped lazily on read")
	assert.Equal(t, 0, c.Len())
}

func TestCacheLRUEviction(t *testing.T) {
	ctx := context.Background()
	evicted := []string{}
	c := New(Config{
		DefaultTTL: time.Minute,
		MaxItems:   3,
		OnEviction: func(key string, _ any) { evicted = append(evicted, key) },
	})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)
	c.Set(ctx, "c", 3)

	// Touch "a" so "b" becomes the least recently used.
	_, ok := c.Get(ctx, "a")
	require.True(t, ok)

	c.Set(ctx, "d", 4)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"b"}, evicted)

	_, ok = c.Get(ctx, "b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "a")
	assert.True(t, ok)
}

func TestCacheUpdateExisting(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute, MaxItems: 10})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "a", 2)
	assert.Equal(t, 1, c.Len())

	value, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute, MaxItems: 10})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)

	c.Delete(ctx, "a")
	_, ok := c.Get(ctx, "a")
	assert.False(t, ok)

	c.Clear(ctx)
	assert.Equal(t, 0, c.Len())
}

func TestTieredCacheFetcher(t *testing.T) {
	ctx := context.Background()
	tc, err := NewTieredCache(&TieredCacheConfig{
		L1MaxItems: 10,
		L1TTL:      time.Minute,
		EnableL1:   true,
	})
	require.NoError(t, err)
	defer tc.Close()

	fetches := 0
	fetcher := func(context.Context, string) (any, error) {
		fetches++
		return "from-db", nil
	}

	value, ok := tc.Get(ctx, "k", fetcher)
	require.True(t, ok)
	assert.Equal(t, "from-db", value)
	assert.Equal(t, 1, fetches)

	// Second read is served from L1.
	value, ok = tc.Get(ctx, "k", fetcher)
	require.True(t, ok)
	assert.Equal(t, "from-db", value)
	assert.Equal(t, 1, fetches)

	tc.Delete(ctx, "k")
	_, ok = tc.Get(ctx, "k", nil)
	assert.False(t, ok)
}

func TestGenerateCacheKey(t *testing.T) {
	key1 := GenerateCacheKey("user", "42")
	key2 := GenerateCacheKey("user", "42")
	assert.Equal(t, key1, key2)
	assert.NotEqual(t, key1, GenerateCacheKey("user", "43"))
}
