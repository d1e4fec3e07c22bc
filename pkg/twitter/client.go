package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"ornithology/internal/fetcher"
	"ornithology/pkg/logger"
	"ornithology/pkg/ratelimit"
)

// ProgressFunc receives bulk-fetch progress: fetched counts records
// actually returned, which can trail total when records have been
// deleted server-side.
type ProgressFunc func(what string, fetched, total int)

// Client is a Twitter v2 API client. It attaches the bearer credential
// to every request and absorbs the server's rate limiting, so callers
// only ever see real failures.
type Client struct {
	httpClient *http.Client
	token      *oauth2.Token
	headers    map[string]string
	baseURL    string
	logger     logger.Logger

	pageSize    int
	budget      int
	window      time.Duration
	progress    ProgressFunc
	onRateLimit func(wait time.Duration)

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Options configures a Client. Zero-valued fields fall back to the
// API defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logger.Logger
	PageSize   int
	Budget     int
	Window     time.Duration
	OnProgress ProgressFunc

	// OnRateLimit fires before each rate-limit pause with the wait
	// about to be served.
	OnRateLimit func(wait time.Duration)
}

// NewClient creates an API client around a bearer credential obtained
// from the authorization flow. The credential is used as-is for every
// request, never refreshed and never persisted.
func NewClient(token *oauth2.Token, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	base := opts.BaseURL
	if base == "" {
		base = BaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	return &Client{
		httpClient: httpClient,
		token:      token,
		headers: map[string]string{
			"User-Agent": "ornithology/0.3.0",
			"Accept":     "application/json",
		},
		baseURL:     base,
		logger:      log,
		pageSize:    pageSize,
		budget:      budget,
		window:      window,
		progress:    opts.OnProgress,
		onRateLimit: opts.OnRateLimit,
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// doRequest performs a single HTTP exchange with the configured
// headers and the bearer credential attached
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.token != nil {
		c.token.SetAuthHeader(req)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("network error: %v", err),
			URL:     req.URL.String(),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps a non-success HTTP status to a typed error
func (c *Client) checkResponseStatus(resp *http.Response) error {
	url := ""
	if resp.Request != nil {
		url = resp.Request.URL.String()
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &Error{
			Kind:    KindAuth,
			Message: "authentication rejected",
			Status:  resp.StatusCode,
			URL:     url,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &Error{
			Kind:    KindNotFound,
			Message: "resource not found",
			Status:  resp.StatusCode,
			URL:     url,
		}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &Error{
			Kind:    KindRateLimit,
			Message: "rate limit exceeded",
			Status:  resp.StatusCode,
			URL:     url,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &Error{
			Kind:    KindServer,
			Message: "server error",
			Status:  resp.StatusCode,
			URL:     url,
		}
	default:
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    url,
			})
			return &Error{
				Kind:    KindUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Status:  resp.StatusCode,
				URL:     url,
			}
		}
		return nil
	}
}

// WhoAmI reports the account the bearer credential belongs to.
func (c *Client) WhoAmI(ctx context.Context) (*Identity, error) {
	u := MeURL(c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: fmt.Sprintf("build request: %v", err), URL: u}
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("whoami: %w", err)
	}

	ident, _, err := decodeEnvelope[Identity](c, resp, u)
	if err != nil {
		return nil, fmt.Errorf("whoami: %w", err)
	}

	c.logger.DebugWithFields("fetched authorized identity", map[string]interface{}{
		"id":       uint64(ident.ID),
		"username": ident.Username,
	})

	return &ident, nil
}

// Tweets fetches the public metrics of the given tweet ids, in pages
// of at most the server page size, under the endpoint's rate budget.
func (c *Client) Tweets(ctx context.Context, ids []uint64) ([]Tweet, error) {
	return fetchMany[Tweet](ctx, c, "tweets", ids, TweetsURL)
}

// Users fetches the public metrics of the given account ids, in pages
// of at most the server page size, under the endpoint's rate budget.
func (c *Client) Users(ctx context.Context, ids []uint64) ([]User, error) {
	return fetchMany[User](ctx, c, "users", ids, UsersURL)
}

// fetchMany runs a paged bulk lookup. Each endpoint family has its own
// rate budget, so every call gets a fresh admission window.
func fetchMany[T any](ctx context.Context, c *Client, what string, ids []uint64, buildURL func(base, ids string) string) ([]T, error) {
	c.logger.InfoWithFields("fetching in bulk", map[string]interface{}{
		"kind":  what,
		"count": len(ids),
	})

	fetched := 0
	total := len(ids)
	cfg := fetcher.Config{
		PageSize: c.pageSize,
		Gate:     ratelimit.NewWindow(c.budget, c.window),
		Logger:   c.logger,
		OnBatch: func(n int) {
			fetched += n
			c.logger.DebugWithFields("fetch progress", map[string]interface{}{
				"kind":    what,
				"fetched": fetched,
				"total":   total,
			})
			if c.progress != nil {
				c.progress(what, fetched, total)
			}
		},
	}

	return fetcher.FetchAll(ctx, cfg, ids, func(ctx context.Context, idList string) ([]T, error) {
		u := buildURL(c.baseURL, idList)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, &Error{Kind: KindUnknown, Message: fmt.Sprintf("build request: %v", err), URL: u}
		}
		resp, err := c.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		data, _, err := decodeEnvelope[[]T](c, resp, u)
		return data, err
	})
}

// decodeEnvelope reads the {data, meta?} wrapper all API responses
// share. A body that does not match it is reported with the full text
// attached, the server's error payloads are far more useful verbatim
// than as a type mismatch.
func decodeEnvelope[T any](c *Client, resp *http.Response, url string) (T, *Meta, error) {
	var zero T
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return zero, nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("read response body: %v", err),
			Status:  resp.StatusCode,
			URL:     url,
		}
	}

	var env struct {
		Data *T    `json:"data"`
		Meta *Meta `json:"meta"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.ErrorWithFields("failed to parse API response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(string(body)),
		})
		return zero, nil, &DecodeError{URL: url, Body: string(body), Err: err}
	}
	if env.Data == nil {
		return zero, nil, &DecodeError{URL: url, Body: string(body), Err: errors.New(`missing "data" field`)}
	}

	return *env.Data, env.Meta, nil
}
