package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// TweetRecord is one element of the tweet data file. Elements wrap the
// payload in a single discriminant key, and identifiers travel as
// decimal strings:
//
//	{"tweet": {"id": "1507961768746549248", "full_text": "..."}}
type TweetRecord struct {
	ID   uint64
	Text string
}

func (t *TweetRecord) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Tweet *struct {
			ID   string `json:"id"`
			Text string `json:"full_text"`
		} `json:"tweet"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if wrapper.Tweet == nil {
		return errors.New(`missing "tweet" object`)
	}
	id, err := strconv.ParseUint(wrapper.Tweet.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("tweet id %q: %w", wrapper.Tweet.ID, err)
	}
	t.ID = id
	t.Text = wrapper.Tweet.Text
	return nil
}

// FollowerRecord is one element of the follower data file:
//
//	{"follower": {"accountId": "17224904"}}
type FollowerRecord struct {
	ID uint64
}

func (f *FollowerRecord) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Follower *struct {
			AccountID string `json:"accountId"`
		} `json:"follower"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if wrapper.Follower == nil {
		return errors.New(`missing "follower" object`)
	}
	id, err := strconv.ParseUint(wrapper.Follower.AccountID, 10, 64)
	if err != nil {
		return fmt.Errorf("follower accountId %q: %w", wrapper.Follower.AccountID, err)
	}
	f.ID = id
	return nil
}
