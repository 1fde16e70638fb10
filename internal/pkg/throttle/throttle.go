// Package throttle counts failed attempts per key and locks a key out once a
// limit is reached within a window.
package throttle

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// Limiter tracks failures for a key.
type Limiter interface {
	// Allowed reports whether another attempt may be made for key.
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail records one failed attempt for key.
	Fail(ctx context.Context, key string) error
	// Reset forgets all failures for key.
	Reset(ctx context.Context, key string) error
}

// Redis is a Limiter backed by a Redis counter per key. The counter expires
// one window after the first failure that finds it without a TTL.
type Redis struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
	window      time.Duration
}

// Option customizes a Redis limiter.
type Option func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithMaxAttempts sets the number of failures after which a key is locked.
func WithMaxAttempts(n int) Option {
	return func(r *Redis) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithWindow sets how long failures are remembered.
func WithWindow(d time.Duration) Option {
	return func(r *Redis) {
		if d > 0 {
			r.window = d
		}
	}
}

// NewRedis builds a Redis-backed limiter.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	r := &Redis{
		client:      client,
		prefix:      "throttle:",
		maxAttempts: defaultMaxAttempts,
		window:      defaultWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allowed reports whether key has fewer failures than the limit.
func (r *Redis) Allowed(ctx context.Context, key string) (bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return false, err
	}

	return count < r.maxAttempts, nil
}

// Fail increments the failure counter. The window starts at the first failure
// and a counter left without a TTL gets one on the next failure.
func (r *Redis) Fail(ctx context.Context, key string) error {
	fk := r.prefix + key

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, fk)
		pipe.ExpireNX(ctx, fk, r.window)
		return nil
	})
	return err
}

// Reset deletes the failure counter.
func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Noop is a Limiter that never locks a key out.
type Noop struct{}

// Allowed always returns true.
func (Noop) Allowed(context.Context, string) (bool, error) { return true, nil }

// Fail does nothing.
func (Noop) Fail(context.Context, string) error { return nil }

// Reset does nothing.
func (Noop) Reset(context.Context, string) error { return nil }
