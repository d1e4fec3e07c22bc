package twitter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Do issues req with the bearer credential attached, transparently
// absorbing the server's rate limiting: a 429 response carrying the
// reset header is drained and retried once the window reopens, however
// many times that takes. Callers observe rate limiting only as elapsed
// time, never as an error.
//
// A 429 still reaches the caller in two cases: the reset header is
// missing or garbled (the server broke its contract, retrying blind
// could spin), or the request carries a one-shot body that cannot be
// re-issued, in which case the rejection response is returned verbatim.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	for {
		resp, err := c.doRequest(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		resetHeader := resp.Header.Get(RateLimitResetHeader)
		reset, perr := strconv.ParseInt(resetHeader, 10, 64)
		if perr != nil {
			drain(resp)
			return nil, &Error{
				Kind:    KindRateLimit,
				Message: fmt.Sprintf("rate limited without a usable %s header (%q)", RateLimitResetHeader, resetHeader),
				Status:  resp.StatusCode,
				URL:     req.URL.String(),
			}
		}

		next, cerr := retryableRequest(req)
		if cerr != nil {
			drain(resp)
			return nil, &Error{
				Kind:    KindUnknown,
				Message: fmt.Sprintf("re-issue request: %v", cerr),
				Status:  resp.StatusCode,
				URL:     req.URL.String(),
			}
		}
		if next == nil {
			return resp, nil
		}
		drain(resp)

		wait := time.Unix(reset, 0).Sub(c.now())
		if wait > time.Second {
			c.logger.WarnWithFields("rate limit reached, waiting for reset", map[string]interface{}{
				"url":          req.URL.String(),
				"wait_seconds": int64(wait / time.Second),
				"reset_at":     time.Unix(reset, 0).UTC().Format(time.RFC3339),
			})
			if c.onRateLimit != nil {
				c.onRateLimit(wait)
			}
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
		// A boundary under a second away is not worth sleeping for.
		req = next
	}
}

// retryableRequest builds a fresh copy of req for re-issue. It returns
// nil when the request body cannot be recreated.
func retryableRequest(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req.Clone(req.Context()), nil
	}
	if req.GetBody == nil {
		return nil, nil
	}
	clone := req.Clone(req.Context())
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

// drain consumes and closes a response body so the connection can be
// reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// sleepCtx pauses for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
