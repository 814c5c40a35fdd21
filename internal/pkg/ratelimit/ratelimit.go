package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter is a fixed-window counter over Redis shared by all dispatcher
// workers and processes. When Redis is unavailable it fails open: throttling
// is an optimization, delivery is the job.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	max    int64
	window time.Duration
	logger *zap.Logger
}

func NewLimiter(rdb *redis.Client, prefix string, max int, window time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		max:    int64(max),
		window: window,
		logger: logger,
	}
}

// Allow consumes one slot in the current window. When the window is
// exhausted it returns false and how long until the next window opens.
func (l *Limiter) Allow(ctx context.Context) (bool, time.Duration) {
	now := time.Now()
	windowID := now.UnixNano() / int64(l.window)
	key := fmt.Sprintf("%s:%d", l.prefix, windowID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing dispatch", zap.Error(err))
		return true, 0
	}

	// Set expiration on first increment
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window+time.Second)
	}

	if count > l.max {
		nextWindow := time.Unix(0, (windowID+1)*int64(l.window))
		return false, nextWindow.Sub(now)
	}
	return true, 0
}
