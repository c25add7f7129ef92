package sequence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore backs the allocator with Redis INCR, which serializes
// concurrent increments server-side. Counters expire after TTL so stale day
// keys do not accumulate; the TTL must comfortably exceed one day.
type RedisCounterStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCounterStore constructs the store. A non-positive TTL defaults to
// 48 hours.
func NewRedisCounterStore(client *redis.Client, ttl time.Duration) *RedisCounterStore {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisCounterStore{client: client, ttl: ttl}
}

// Incr atomically increments the counter, stamping the expiry on first use.
func (s *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	return n, nil
}
