package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultWindow = time.Minute

// RateLimiter counts requests per subject in fixed windows.
// Key format: ratelimit:<scope>:<subject>
type RateLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewRateLimiter creates a RateLimiter wrapping the given Redis client. A
// non-positive window falls back to one minute.
func NewRateLimiter(client *redis.Client, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = defaultWindow
	}
	return &RateLimiter{client: client, window: window}
}

// Allow counts one hit for subject and reports whether it stays within limit
// for the current window. The counter expires with the window that opened it.
func (l *RateLimiter) Allow(ctx context.Context, scope, subject string, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	key := l.key(scope, subject)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", scope, err)
	}

	return incr.Val() <= int64(limit), nil
}

func (l *RateLimiter) key(scope, subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, subject)
}
