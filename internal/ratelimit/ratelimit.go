// Package ratelimit counts submissions per client token in fixed windows.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidConfig = errors.New("rate limit needs a positive limit and window")

// Store counts hits for key in the window that starts with the first hit.
// It returns the count including this hit and the time left in the window.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
	prefix string
}

func New(store Store, limit int, window time.Duration, prefix string) (*Limiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Limiter{store: store, limit: int64(limit), window: window, prefix: prefix}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := l.store.Hit(ctx, l.prefix+key, l.window)
	if err != nil {
		return Decision{}, err
	}
	if count > l.limit {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}
	return Decision{Allowed: true, Remaining: l.limit - count}, nil
}
