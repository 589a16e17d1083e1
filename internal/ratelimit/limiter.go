// Package ratelimit enforces a minimum interval between outbound requests.
package ratelimit

import (
	"context"
	"time"
)

// Limiter spaces calls to Wait at least Interval apart. It holds a single
// last-request timestamp shared by every source and is not safe for
// concurrent use; the pipeline is sequential.
type Limiter struct {
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Wait blocks until Interval has elapsed since the previous call, then
// records the current time as the new last request. It returns early
// with ctx.Err() if ctx is cancelled while sleeping. The returned
// duration is how long it slept.
func (l *Limiter) Wait(ctx context.Context) (time.Duration, error) {
	var slept time.Duration
	if !l.last.IsZero() {
		elapsed := l.now().Sub(l.last)
		if remaining := l.interval - elapsed; remaining > 0 {
			if err := l.sleep(ctx, remaining); err != nil {
				return 0, err
			}
			slept = remaining
		}
	}
	l.last = l.now()
	return slept, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
