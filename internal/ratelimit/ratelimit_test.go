package ratelimit

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLimiterBlocksWithinWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	limiter, err := New(store, 1, 10*time.Minute, "grids:")
	require.NoError(t, err)
	ctx := context.Background()

	decision, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	now = now.Add(4 * time.Minute)
	decision, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 6*time.Minute, decision.RetryAfter)

	decision, err = limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "other clients are independent")

	now = now.Add(6 * time.Minute)
	decision, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "a new window starts after expiry")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(NewMemoryStore(), 0, time.Minute, "")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestMemoryStoreConcurrentHits(t *testing.T) {
	store := NewMemoryStore()
	limiter, err := New(store, 5, time.Minute, "")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Allow(context.Background(), "shared")
			if err == nil && decision.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, allowed)
}

func TestMemoryStorePrunesExpiredWindows(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < pruneEvery-1; i++ {
		_, _, err := store.Hit(context.Background(), fmt.Sprintf("k%d", i), time.Second)
		require.NoError(t, err)
	}
	now = now.Add(time.Minute)
	_, _, err := store.Hit(context.Background(), "fresh", time.Second)
	require.NoError(t, err)
	assert.Len(t, store.windows, 1)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("RATE_LIMIT_REDIS_ADDR")
	if addr == "" {
		t.Skip("RATE_LIMIT_REDIS_ADDR not set")
	}
	client := NewRedisClient(addr, 0)
	defer client.Close()

	ctx := context.Background()
	key := fmt.Sprintf("test:%d", time.Now().UnixNano())
	defer client.Del(ctx, key)

	count, ttl, err := NewRedisStore(client).Hit(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	count, _, err = NewRedisStore(client).Hit(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
