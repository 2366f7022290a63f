// Package ratelimit provides distributed rate limiting backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/pkg/logger"
)

const keyPrefix = "sso:rl:"

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	log    logger.Logger
}

// NewRedisRateLimiter creates a fixed-window rate limiter. The counter for
// each key lives in Redis so the limit holds across server instances.
func NewRedisRateLimiter(client *redis.Client, limit int64, window time.Duration, log logger.Logger) service.RateLimitService {
	return &redisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		log:    log.WithComponent("rate_limit"),
	}
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Time, error) {
	windowStart := time.Now().Truncate(r.window)
	resetAt := windowStart.Add(r.window)
	redisKey := fmt.Sprintf("%s%s:%d", keyPrefix, key, windowStart.Unix())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open: a rate limiter outage must not take down the token
		// endpoint with it.
		r.log.Warn(ctx, "rate limiter unavailable, allowing request", logger.Error(err))
		return true, 0, resetAt, nil
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= r.limit, remaining, resetAt, nil
}
