package ratelimit

import (
	"time"

	"github.com/kettlegourmet/hrm/internal/storage"
)

const (
	AlgorithmFixedWindow   = "fixed_window"
	AlgorithmSlidingWindow = "sliding_window"
)

// NewLimiter picks the limiter for algorithm, falling back to a fixed window
func NewLimiter(redis *storage.RedisClient, algorithm, prefix string, limit int, window time.Duration) Limiter {
	switch algorithm {
	case AlgorithmSlidingWindow:
		return NewSlidingWindow(redis, prefix, limit, window)
	default:
		return NewFixedWindow(redis, prefix, limit, window)
	}
}
