package twitter

import "fmt"

// ErrorKind classifies API failures
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAuth      ErrorKind = "auth"
	KindNotFound  ErrorKind = "not_found"
	KindRateLimit ErrorKind = "rate_limit"
	KindServer    ErrorKind = "server"
	KindUnknown   ErrorKind = "unknown"
)

// Error represents a Twitter API error
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	URL     string
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("twitter %s error (status %d): %s [%s]", e.Kind, e.Status, e.Message, e.URL)
	}
	return fmt.Sprintf("twitter %s error (status %d): %s", e.Kind, e.Status, e.Message)
}

// DecodeError reports a response body that did not match the expected
// envelope. The full body is retained so the caller can see exactly
// what the server sent.
type DecodeError struct {
	URL  string
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("parse response from %s: %v (body: %s)", e.URL, e.Err, preview(e.Body))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// preview truncates a response body for log and error messages.
func preview(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
