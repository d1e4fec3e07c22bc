package twitter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a numeric identifier that travels as a decimal string on the
// wire. The API quotes identifiers to keep them intact for JSON
// consumers that round floats through 53 bits.
type ID uint64

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(id), 10))), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("id %q: %w", s, err)
	}
	*id = ID(v)
	return nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Identity is the authorized account, as reported by the users/me
// endpoint.
type Identity struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

// TweetMetrics holds the public engagement counters of a tweet.
type TweetMetrics struct {
	Retweets int `json:"retweet_count"`
	Replies  int `json:"reply_count"`
	Likes    int `json:"like_count"`
	Quotes   int `json:"quote_count"`
}

// Tweet is a single fetched tweet. The text is deliberately not
// requested, only the fields the ranking needs.
type Tweet struct {
	ID      ID           `json:"id"`
	Created time.Time    `json:"created_at"`
	Metrics TweetMetrics `json:"public_metrics"`
}

// UserMetrics holds the public follow counters of a user.
type UserMetrics struct {
	Followers int `json:"followers_count"`
	Following int `json:"following_count"`
}

// User is a single fetched account.
type User struct {
	Username string      `json:"username"`
	Metrics  UserMetrics `json:"public_metrics"`
}

// Meta is the pagination trailer some endpoints attach to their
// envelope. Bulk id lookups do not paginate, so it is decoded but
// currently unused; cursor-following would start from NextToken.
type Meta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}
