package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func NewRedisClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}

func (s *RedisStore) Hit(ctx context.Context, key string, length time.Duration) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("ratelimit: redis hit: %w", err)
	}

	ttl := pttl.Val()
	if ttl <= 0 {
		if err := s.client.PExpire(ctx, key, length).Err(); err != nil {
			return 0, 0, fmt.Errorf("ratelimit: redis expire: %w", err)
		}
		ttl = length
	}
	return incr.Val(), ttl, nil
}
