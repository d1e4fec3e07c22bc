package twitter

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

const (
	// BaseURL is the base URL for the Twitter v2 API
	BaseURL = "https://api.twitter.com"

	// AuthorizeURL is where the user grants access
	AuthorizeURL = "https://twitter.com/i/oauth2/authorize"

	// TokenURL is where an authorization code is exchanged for a token
	TokenURL = "https://api.twitter.com/2/oauth2/token"

	// MeEndpoint reports the authorized account
	MeEndpoint = "/2/users/me"

	// TweetsEndpoint is the bulk tweet lookup endpoint
	TweetsEndpoint = "/2/tweets"

	// UsersEndpoint is the bulk user lookup endpoint
	UsersEndpoint = "/2/users"

	// TweetFields are the tweet fields requested on bulk lookups
	TweetFields = "id,created_at,public_metrics"

	// UserFields are the user fields requested on bulk lookups
	UserFields = "username,public_metrics"

	// DefaultPageSize is the server's maximum number of ids per bulk lookup
	DefaultPageSize = 100

	// DefaultBudget is the number of requests allowed per rate window
	// on the bulk lookup endpoints
	DefaultBudget = 900

	// DefaultWindow is the length of the server's rate window
	DefaultWindow = 15 * time.Minute

	// RateLimitResetHeader carries the unix time at which a rate window
	// reopens, attached to 429 responses
	RateLimitResetHeader = "x-rate-limit-reset"
)

// OAuthScopes are the access scopes the archive enrichment needs.
var OAuthScopes = []string{"tweet.read", "users.read", "follows.read"}

// OAuthEndpoint returns the provider's OAuth2 endpoint configuration.
// The token endpoint wants its parameters in the POST form, including
// an explicit client_id field.
func OAuthEndpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   AuthorizeURL,
		TokenURL:  TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// MeURL constructs the URL reporting the authorized account
func MeURL(base string) string {
	return base + MeEndpoint
}

// TweetsURL constructs the bulk tweet lookup URL for a comma-joined
// id list. The ids ride unescaped, commas are meaningful to the API.
func TweetsURL(base, ids string) string {
	return fmt.Sprintf("%s%s?tweet.fields=%s&ids=%s", base, TweetsEndpoint, TweetFields, ids)
}

// UsersURL constructs the bulk user lookup URL for a comma-joined id list
func UsersURL(base, ids string) string {
	return fmt.Sprintf("%s%s?user.fields=%s&ids=%s", base, UsersEndpoint, UserFields, ids)
}
