package notify

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultThrottleKey = "contact:last_email_time"

// RedisThrottle backs the throttle state with a Redis key so concurrently
// running instances share one notification budget. The key holds the send
// instant as unix milliseconds and expires with the configured TTL.
type RedisThrottle struct {
	client redis.UniversalClient
	key    string
}

// NewRedisThrottle constructs a Redis-backed throttle store. An empty key
// falls back to the default.
func NewRedisThrottle(client redis.UniversalClient, key string) *RedisThrottle {
	if key == "" {
		key = defaultThrottleKey
	}
	return &RedisThrottle{client: client, key: key}
}

// LastSentAt implements ThrottleStore.
func (r *RedisThrottle) LastSentAt(ctx context.Context) (time.Time, bool, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(millis), true, nil
}

// MarkSent implements ThrottleStore.
func (r *RedisThrottle) MarkSent(ctx context.Context, sentAt time.Time, ttl time.Duration) error {
	return r.client.Set(ctx, r.key, strconv.FormatInt(sentAt.UnixMilli(), 10), ttl).Err()
}
