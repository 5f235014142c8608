package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter behind the two calls the tool servers need.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a token bucket limiter with r tokens per second and burst b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Limit(r), b),
	}
}

// NewLimiterEvery allows one event per interval with burst b.
func NewLimiterEvery(interval time.Duration, b int) *Limiter {
	return &Limiter{
		inner: rate.NewLimiter(rate.Every(interval), b),
	}
}

// Allow reports whether an event with weight n may happen now.
func (l *Limiter) Allow(n int) bool {
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}
