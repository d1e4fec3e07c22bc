package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter defines the interface for request admission
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit.
	// An allowed request is recorded immediately.
	Allow() bool
	// Wait blocks until the rate limit admits another request or the
	// context is cancelled. A nil return means the request was admitted
	// and recorded.
	Wait(ctx context.Context) error
	// Reset resets the rate limiter state
	Reset()
}

// Window implements a rolling-window rate limiter: across any window of
// the configured size, at most maxRequests admissions are granted.
type Window struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	now         func() time.Time
	mu          sync.Mutex
}

// NewWindow creates a rolling-window rate limiter admitting maxRequests
// per windowSize.
func NewWindow(maxRequests int, windowSize time.Duration) *Window {
	return &Window{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
		now:         time.Now,
	}
}

// Allow checks if a request can proceed. The admission check and the
// recording of the request are a single critical section, so two
// concurrent calls can never both ride on the same free slot.
func (w *Window) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.dropExpired(now)

	if len(w.requests) < w.maxRequests {
		w.requests = append(w.requests, now)
		return true
	}

	return false
}

// Wait blocks until a request is admitted or ctx is done.
func (w *Window) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.Allow() {
			return nil
		}

		wait := w.retryAfter()
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Reset clears all recorded requests
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.requests = w.requests[:0]
}

// retryAfter returns how long until the oldest recorded request leaves
// the window.
func (w *Window) retryAfter() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.requests) == 0 {
		return 0
	}
	return w.windowSize - w.now().Sub(w.requests[0])
}

// dropExpired removes requests outside the rolling window
func (w *Window) dropExpired(now time.Time) {
	cutoff := now.Add(-w.windowSize)

	i := 0
	for i < len(w.requests) && w.requests[i].Before(cutoff) {
		i++
	}

	if i > 0 {
		copy(w.requests, w.requests[i:])
		w.requests = w.requests[:len(w.requests)-i]
	}
}
