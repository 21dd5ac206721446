package ratelimit

import (
	"context"
	"sync"
	"time"
)

const pruneEvery = 1024

type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]window
	hits    int
	now     func() time.Time
}

type window struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]window),
		now:     time.Now,
	}
}

func (s *MemoryStore) Hit(ctx context.Context, key string, length time.Duration) (int64, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits++
	if s.hits%pruneEvery == 0 {
		s.prune(now)
	}

	w, ok := s.windows[key]
	if !ok || !w.expiresAt.After(now) {
		w = window{expiresAt: now.Add(length)}
	}
	w.count++
	s.windows[key] = w
	return w.count, w.expiresAt.Sub(now), nil
}

func (s *MemoryStore) prune(now time.Time) {
	for key, w := range s.windows {
		if !w.expiresAt.After(now) {
			delete(s.windows, key)
		}
	}
}
