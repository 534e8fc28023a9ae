package httpclient

import (
	"context"
	"sync"
	"time"
)

// Limiter hands out request slots at least interval apart. It is safe for
// concurrent use; a nil Limiter or a zero interval never waits.
type Limiter struct {
	next     time.Time
	interval time.Duration
	mu       sync.Mutex
}

// NewLimiter creates a limiter allowing one request per interval.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// PerSecond converts a request rate into a minimum interval.
func PerSecond(requests int) time.Duration {
	if requests <= 0 {
		return 0
	}

	return time.Second / time.Duration(requests)
}

// Wait blocks until the caller's slot comes up or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	l.mu.Lock()
	now := time.Now()
	if l.next.Before(now) {
		l.next = now
	}

	wait := l.next.Sub(now)
	l.next = l.next.Add(l.interval)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
