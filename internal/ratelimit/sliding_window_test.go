package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindow_OldAttemptsExpire(t *testing.T) {
	limiter := NewSlidingWindow(newTestRedis(t), "login", 2, time.Minute)
	ctx := context.Background()

	start := time.Now()
	limiter.now = func() time.Time { return start }

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	resetAt, err := limiter.ResetAt(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(time.Minute), resetAt, time.Millisecond)

	limiter.now = func() time.Time { return start.Add(61 * time.Second) }

	remaining, err := limiter.Remaining(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)

	allowed, err = limiter.Allow(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSlidingWindow_Clear(t *testing.T) {
	limiter := NewSlidingWindow(newTestRedis(t), "login", 1, time.Hour)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, limiter.Clear(ctx, "k"))

	remaining, err := limiter.Remaining(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestNewLimiter_SelectsAlgorithm(t *testing.T) {
	redis := newTestRedis(t)

	assert.IsType(t, &SlidingWindowLimiter{}, NewLimiter(redis, AlgorithmSlidingWindow, "login", 5, time.Minute))
	assert.IsType(t, &FixedWindowLimiter{}, NewLimiter(redis, AlgorithmFixedWindow, "login", 5, time.Minute))
	assert.IsType(t, &FixedWindowLimiter{}, NewLimiter(redis, "", "login", 5, time.Minute))
}
