package inmemory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedCacheExpires(t *testing.T) {
	cache := NewFeedCache()
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("feeds:stats", 42, time.Minute)
	value, ok := cache.Get("feeds:stats")
	assert.True(t, ok)
	assert.Equal(t, 42, value)

	now = now.Add(time.Minute)
	_, ok = cache.Get("feeds:stats")
	assert.False(t, ok)
	assert.Empty(t, cache.items)
}

func TestFeedCacheClearAndZeroTTL(t *testing.T) {
	cache := NewFeedCache()
	cache.Set("a", 1, time.Minute)
	cache.Set("b", 2, time.Minute)

	cache.Set("a", 3, 0)
	_, ok := cache.Get("a")
	assert.False(t, ok, "zero ttl deletes the entry")

	cache.Clear()
	_, ok = cache.Get("b")
	assert.False(t, ok)
}
