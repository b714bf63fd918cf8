package ratelimiting

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrWaitExceedsDeadline is returned when the context deadline is reached before a slot frees up
var ErrWaitExceedsDeadline = errors.New("rate limit wait exceeds context deadline")

// WindowLimiter allows at most limit operations to start within any window
type WindowLimiter struct {
	limit     int
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	mutex sync.Mutex
	// starts of the operations within the current window, oldest first
	starts []time.Time
}

func NewWindowLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *WindowLimiter {
	if limit < 1 {
		panic("window limiter needs a limit of at least 1")
	}

	return &WindowLimiter{
		limit:     limit,
		window:    window,
		nowFunc:   nowFunc,
		afterFunc: afterFunc,
		starts:    make([]time.Time, 0, limit),
	}
}

// reserve claims a slot if one is free, otherwise returns how long until the oldest slot frees up
func (l *WindowLimiter) reserve() (time.Duration, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.nowFunc()
	cutoff := now.Add(-l.window)
	expired := 0
	for expired < len(l.starts) && !l.starts[expired].After(cutoff) {
		expired++
	}
	l.starts = l.starts[expired:]

	if len(l.starts) < l.limit {
		l.starts = append(l.starts, now)
		return 0, true
	}

	return l.starts[0].Add(l.window).Sub(now), false
}

// Wait blocks until an operation may start.
// It gives up early with ErrWaitExceedsDeadline if the wait would pass the deadline of ctx.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := l.reserve()
		if ok {
			return nil
		}

		if deadline, hasDeadline := ctx.Deadline(); hasDeadline && l.nowFunc().Add(wait).After(deadline) {
			return ErrWaitExceedsDeadline
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.afterFunc(wait):
		}
	}
}
