// Package twitter provides a client for the Twitter v2 API.
//
// This package includes:
//   - A bearer-credential HTTP client that absorbs server rate limiting
//   - Paged, concurrent bulk lookups for tweets and users
//   - Type-safe models for the API's envelope responses
//   - Typed errors that carry the failing URL and, for undecodable
//     responses, the raw body
//
// Rate limiting is handled inside the client: a 429 response with an
// x-rate-limit-reset header is waited out and the request re-issued,
// so callers only ever see real failures. Bulk lookups split the id
// list into server-sized pages and fetch them concurrently under the
// endpoint's request budget.
//
// Example usage:
//
//	client := twitter.NewClient(token, twitter.Options{})
//
//	me, err := client.WhoAmI(ctx)
//	if err != nil {
//	    var apiErr *twitter.Error
//	    if errors.As(err, &apiErr) && apiErr.Kind == twitter.KindAuth {
//	        // Credential was rejected; run the authorization flow again.
//	    }
//	    return err
//	}
//
//	tweets, err := client.Tweets(ctx, tweetIDs)
//	users, err := client.Users(ctx, followerIDs)
package twitter
