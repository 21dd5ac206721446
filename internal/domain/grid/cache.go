package grid

import "time"

type FeedCache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Clear()
}

type noopFeedCache struct{}

func (noopFeedCache) Get(string) (any, bool) {
	return nil, false
}

func (noopFeedCache) Set(string, any, time.Duration) {}

func (noopFeedCache) Clear() {}
