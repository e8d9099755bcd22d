package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every instance using the same Redis.
// Each window is one key: INCR ratelimit:{key}:{windowStart} with EXPIRE window.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	clock  func() time.Time
}

func NewRateLimiter(client *redis.Client, limit int, per time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: per, clock: time.Now}
}

// Allow counts one hit for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	start := l.clock().Truncate(l.window).Unix()
	redisKey := "ratelimit:" + key + ":" + strconv.FormatInt(start, 10)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(l.limit), nil
}
