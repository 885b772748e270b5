package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rl:"

// RedisWindow is a fixed-window limiter backed by Redis counters, for
// deployments where several processes must share one budget. INCR plus a
// conditional EXPIRE on the first hit; the window resets wholesale when the
// key expires.
type RedisWindow struct {
	redis redis.UniversalClient
}

// NewRedisWindow describes the newrediswindow operation and its observable behavior.
//
// NewRedisWindow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisWindow(client redis.UniversalClient) *RedisWindow {
	return &RedisWindow{redis: client}
}

// Allow admits the call unless the key's counter has reached limit within
// the current fixed window. Backend failures surface as
// [ErrBackendUnavailable], never as a silent admit.
func (r *RedisWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return false, nil
	}

	count, err := r.redis.Incr(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, redisKeyPrefix+key, window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}

	return count <= int64(limit), nil
}

// AllowPolicy applies a named policy to key.
func (r *RedisWindow) AllowPolicy(ctx context.Context, key string, p Policy) (bool, error) {
	return r.Allow(ctx, key, p.Limit, p.Window)
}

// AllowN counts n calls against the current window in one INCRBY. The slots
// are consumed even when the batch overflows the limit; a fixed-window
// counter cannot roll back a half-admitted batch atomically without a
// script, and overcounting on denial is the safe direction.
func (r *RedisWindow) AllowN(ctx context.Context, key string, n, limit int, window time.Duration) (bool, error) {
	if n <= 0 || limit <= 0 || window <= 0 {
		return false, nil
	}

	count, err := r.redis.IncrBy(ctx, redisKeyPrefix+key, int64(n)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if count == int64(n) {
		if err := r.redis.Expire(ctx, redisKeyPrefix+key, window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
	}

	return count <= int64(limit), nil
}
