package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts requests per key in fixed windows.
// Key format: ratelimit:<key>:<window index>
type FixedWindowLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client *redis.Client, limit int, window time.Duration) *FixedWindowLimiter {
	if window < time.Second {
		window = time.Second
	}
	if limit < 1 {
		limit = 1
	}
	return &FixedWindowLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow counts one request for key. When the window is exhausted it returns
// false and the time left until the window resets.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	bucket := now.UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit: %w", err)
	}

	if incr.Val() > l.limit {
		resetAt := time.Unix(0, (bucket+1)*int64(l.window))
		return false, resetAt.Sub(now), nil
	}
	return true, 0, nil
}
