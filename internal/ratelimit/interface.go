package ratelimit

import (
	"context"
	"time"
)

// Limiter counts attempts per key within a window
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)

	Remaining(ctx context.Context, key string) (int, error)

	Limit() int

	Window() time.Duration

	// Returns the time at which the current window ends
	ResetAt(ctx context.Context, key string) (time.Time, error)

	// Forgets all attempts recorded for key
	Clear(ctx context.Context, key string) error
}
