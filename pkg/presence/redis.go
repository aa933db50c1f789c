package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Tracker for multi-instance deployments: the signal lives in a
// Redis key with a native TTL, so every gateway replica observes the same
// typing state and expiry needs no application sweeps at all.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis builds a Redis tracker on an existing client. A non-positive ttl
// falls back to DefaultTTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func redisKey(sender, receiver int64) string {
	return fmt.Sprintf("typing:%d:%d", sender, receiver)
}

func (r *Redis) SetTyping(ctx context.Context, sender, receiver int64, on bool) error {
	key := redisKey(sender, receiver)
	if on {
		return r.client.Set(ctx, key, "1", r.ttl).Err()
	}
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) IsTyping(ctx context.Context, sender, receiver int64) (bool, error) {
	n, err := r.client.Exists(ctx, redisKey(sender, receiver)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
