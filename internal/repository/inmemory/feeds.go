package inmemory

import (
	"sync"
	"time"
)

// FeedCache keeps computed feeds until they expire or the cache is
// cleared.
type FeedCache struct {
	mu    sync.RWMutex
	items map[string]feedItem
	now   func() time.Time
}

type feedItem struct {
	value     any
	expiresAt time.Time
}

func NewFeedCache() *FeedCache {
	return &FeedCache{
		items: make(map[string]feedItem),
		now:   time.Now,
	}
}

func (c *FeedCache) Get(key string) (any, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[key]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return item.value, true
}

func (c *FeedCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(key)
		return
	}

	c.mu.Lock()
	c.items[key] = feedItem{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *FeedCache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *FeedCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]feedItem)
	c.mu.Unlock()
}
