// Package ratelimit throttles abuse-prone endpoints (signup, login) with a
// fixed window per client IP, backed by Redis so limits hold across replicas.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 10
	defaultWindow = 15 * time.Minute
)

// Limiter counts requests per (purpose, IP) within a fixed window.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		limit:  defaultLimit,
		window: defaultWindow,
	}
}

// NewLimiterWithConfig creates a limiter with explicit limit and window.
func NewLimiterWithConfig(client *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func requestKey(purpose, ip string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// Allow records a request for the given IP and purpose and reports whether
// it is within the limit. Callers should treat an error as "allowed" so a
// Redis outage does not lock users out.
func (l *Limiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	key := requestKey(purpose, ip)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to record request: %w", err)
	}

	return incr.Val() <= l.limit, nil
}

// Reset clears the window for the given IP and purpose.
func (l *Limiter) Reset(ctx context.Context, ip, purpose string) error {
	if err := l.client.Del(ctx, requestKey(purpose, ip)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
