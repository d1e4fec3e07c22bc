// Package ratelimit provides request admission control for the fetch pipeline.
//
// The Window limiter tracks admission timestamps within a rolling time
// window: across any window of the configured size, at most the configured
// number of requests is admitted. This matches API quotas expressed as
// "N requests per M minutes" exactly, with no burst overshoot at window
// boundaries.
//
// Interface:
//
// Limiters implement the Limiter interface:
//   - Allow() bool - Check and record an admission atomically
//   - Wait(ctx) error - Block until admitted or the context is cancelled
//   - Reset() - Clear the admission log
//
// Usage:
//
//	// 900 requests per 15 minutes
//	limiter := ratelimit.NewWindow(900, 15*time.Minute)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // cancelled while waiting
//	}
//	// Proceed with request
package ratelimit
