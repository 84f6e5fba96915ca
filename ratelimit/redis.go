// api/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts windows in a shared Redis instance so the budget holds
// across process instances. The window lives as a counter with a TTL; the
// first increment of a window sets the expiry, later increments leave it
// untouched, and Redis discards the key once the window lapses.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment rate window: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to start rate window: %w", err)
		}
		return count, now.Add(window), nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read rate window ttl: %w", err)
	}
	if ttl < 0 {
		// Counter exists without expiry (e.g. a crashed predecessor between
		// INCR and PEXPIRE); re-arm the window rather than letting the key
		// count forever.
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to repair rate window: %w", err)
		}
		ttl = window
	}
	return count, now.Add(ttl), nil
}
