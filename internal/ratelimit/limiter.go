// Package ratelimit bounds attempts per client identity and action.
//
// Counters are process-local. Under horizontal scaling each node enforces
// its own bound, so the limit is advisory rather than a security boundary.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultLimit  = 5
	DefaultWindow = 15 * time.Minute
)

// Limiter decides whether identity may perform action now.
type Limiter interface {
	Allow(ctx context.Context, identity, action string) (allowed bool, err error)
}

// FixedWindowLimiter allows up to limit attempts per (identity, action)
// within each window.
type FixedWindowLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

var _ Limiter = (*FixedWindowLimiter)(nil)

// NewFixedWindowLimiter creates a limiter over store.
func NewFixedWindowLimiter(store Store, limit int64, window time.Duration) *FixedWindowLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if window <= 0 {
		window = DefaultWindow
	}

	return &FixedWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, identity, action string) (bool, error) {
	count, err := l.store.Record(ctx, Key(identity, action), l.window)
	if err != nil {
		return false, err
	}

	return count <= l.limit, nil
}

// Window returns the configured window length.
func (l *FixedWindowLimiter) Window() time.Duration {
	return l.window
}

// Key builds the counter key for an (identity, action) pair.
func Key(identity, action string) string {
	return identity + ":" + action
}
