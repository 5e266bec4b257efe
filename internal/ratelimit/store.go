package ratelimit

import (
	"context"
	"time"
)

// Store counts attempts per key in fixed windows.
type Store interface {
	// Record counts one attempt against key and returns the count in the
	// current window, opening a new window of the given length when the
	// previous one has elapsed.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
