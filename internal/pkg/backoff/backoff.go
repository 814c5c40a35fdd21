package backoff

import (
	"math"
	"time"
)

// Policy defines the exponential backoff parameters for delivery retries.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
}

// DefaultPolicy matches the queue defaults: 3 attempts, 1s base, doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Minute,
		Factor:      2.0,
	}
}

// Delay computes the wait before the next attempt after retryCount failures:
// BaseDelay * Factor^retryCount, capped at MaxDelay.
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	d := float64(p.BaseDelay) * math.Pow(p.Factor, float64(retryCount))
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Exhausted reports whether retryCount failed attempts used up MaxAttempts.
func (p Policy) Exhausted(retryCount int) bool {
	return retryCount >= p.MaxAttempts
}
