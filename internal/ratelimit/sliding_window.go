package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kettlegourmet/hrm/internal/storage"
)

// SlidingWindowLimiter keeps one sorted set entry per attempt, scored by its
// timestamp, so the window moves with every call
type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindow(redis *storage.RedisClient, prefix string, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (s *SlidingWindowLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:sliding:%s:%s", s.prefix, key)
}

// Drops attempts older than the window and counts the rest
func (s *SlidingWindowLimiter) count(ctx context.Context, redisKey string, now time.Time) (int64, error) {
	windowStart := now.Add(-s.window)
	if err := s.redis.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10)); err != nil {
		return 0, err
	}
	return s.redis.ZCard(ctx, redisKey)
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := s.key(key)
	now := s.now()

	count, err := s.count(ctx, redisKey, now)
	if err != nil {
		return false, err
	}
	if count >= int64(s.limit) {
		return false, nil
	}

	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
	if err := s.redis.ZAdd(ctx, redisKey, float64(now.UnixNano()), member); err != nil {
		return false, err
	}
	_ = s.redis.Expire(ctx, redisKey, s.window)

	return true, nil
}

func (s *SlidingWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	count, err := s.count(ctx, s.key(key), s.now())
	if err != nil {
		return 0, err
	}

	remaining := s.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

// ResetAt is when the oldest attempt leaves the window
func (s *SlidingWindowLimiter) ResetAt(ctx context.Context, key string) (time.Time, error) {
	oldest, err := s.redis.ZRangeWithScores(ctx, s.key(key), 0, 0)
	if err != nil {
		return time.Time{}, err
	}
	if len(oldest) == 0 {
		return s.now(), nil
	}

	return time.Unix(0, int64(oldest[0].Score)).Add(s.window), nil
}

func (s *SlidingWindowLimiter) Clear(ctx context.Context, key string) error {
	return s.redis.Del(ctx, s.key(key))
}
