package repository

import (
	"context"
	"time"
)

// Locker is a non-blocking named lock. TryLock returns a token that must be
// passed to Unlock, and false when the lock is already held.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter is a fixed-window counter per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
