package auth

import "fmt"

// ErrorKind is the error code of a failed authorization, either one of
// the RFC 6749 codes the provider redirects back with or a code raised
// by the flow itself.
type ErrorKind string

const (
	// The request is missing a parameter, contains an invalid
	// parameter, includes a parameter more than once, or is otherwise
	// invalid.
	KindInvalidRequest ErrorKind = "invalid_request"
	// The user or the authorization server denied the request.
	KindAccessDenied ErrorKind = "access_denied"
	// The client is not allowed to request an authorization code using
	// this method.
	KindUnauthorizedClient ErrorKind = "unauthorized_client"
	// The server does not support obtaining an authorization code
	// using this method.
	KindUnsupportedResponseType ErrorKind = "unsupported_response_type"
	// The requested scope is invalid or unknown.
	KindInvalidScope ErrorKind = "invalid_scope"
	// The server hit an internal error and redirected back instead of
	// serving a 500 page.
	KindServerError ErrorKind = "server_error"
	// The server is under maintenance or otherwise unavailable.
	KindTemporarilyUnavailable ErrorKind = "temporarily_unavailable"
	// The redirect carried a state parameter this flow never issued.
	KindCSRFMismatch ErrorKind = "csrf_mismatch"
)

func (k ErrorKind) String() string {
	switch k {
	case KindAccessDenied:
		return "you didn't allow access"
	case KindInvalidRequest, KindUnauthorizedClient, KindUnsupportedResponseType, KindInvalidScope:
		return "the code is wrong"
	case KindServerError:
		return "the twitter api broke"
	case KindTemporarilyUnavailable:
		return "the twitter api is down"
	case KindCSRFMismatch:
		return "the redirect did not come from this flow"
	default:
		return string(k)
	}
}

// Error is a failed authorization flow.
type Error struct {
	Kind ErrorKind

	// Description is the provider's optional human-readable account of
	// the error. It is meant for the developer, not the end user.
	Description string

	// URI optionally points at a web page with more information about
	// the error, again meant for the developer.
	URI string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("authorization failed: %s (%s)", e.Kind.String(), string(e.Kind))
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.URI != "" {
		msg += " [" + e.URI + "]"
	}
	return msg
}
