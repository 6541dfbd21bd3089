package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles file reads during a scan. A nil *Limiter never blocks,
// so callers can skip the nil check when throttling is off.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter returns a limiter refilling perSecond tokens with the given burst.
// It returns nil when perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limiter) Allow(n int) bool {
	if l == nil {
		return true
	}
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}
	return l.inner.WaitN(ctx, n)
}
