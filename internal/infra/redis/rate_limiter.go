package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

func SubmitKey(clientID string) string {
	return fmt.Sprintf("rate_limit:submit:%s", clientID)
}

// AllowSubmit applies the fixed window to run submissions from one client.
func (r *RateLimiter) AllowSubmit(ctx context.Context, clientID string, limit int, window time.Duration) (bool, error) {
	return r.Allow(ctx, SubmitKey(clientID), limit, window)
}
