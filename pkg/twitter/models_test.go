package twitter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"small id", `"42"`, 42, false},
		{"snowflake id", `"1354143047324299264"`, 1354143047324299264, false},
		{"max uint64", `"18446744073709551615"`, 18446744073709551615, false},
		{"bare number", `42`, 0, true},
		{"non-numeric", `"abc"`, 0, true},
		{"negative", `"-1"`, 0, true},
		{"empty string", `""`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestIDMarshal(t *testing.T) {
	data, err := json.Marshal(ID(1354143047324299264))
	require.NoError(t, err)
	assert.Equal(t, `"1354143047324299264"`, string(data))
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "1354143047324299264", ID(1354143047324299264).String())
}

func TestTweetUnmarshal(t *testing.T) {
	body := `{
		"id": "1354143047324299264",
		"created_at": "2021-01-26T19:31:58.000Z",
		"public_metrics": {
			"retweet_count": 8,
			"reply_count": 2,
			"like_count": 124,
			"quote_count": 1
		}
	}`

	var tweet Tweet
	require.NoError(t, json.Unmarshal([]byte(body), &tweet))

	assert.Equal(t, ID(1354143047324299264), tweet.ID)
	assert.Equal(t, 2021, tweet.Created.Year())
	assert.Equal(t, 8, tweet.Metrics.Retweets)
	assert.Equal(t, 2, tweet.Metrics.Replies)
	assert.Equal(t, 124, tweet.Metrics.Likes)
	assert.Equal(t, 1, tweet.Metrics.Quotes)
}

func TestUserUnmarshal(t *testing.T) {
	body := `{
		"username": "jonhoo",
		"public_metrics": {
			"followers_count": 40123,
			"following_count": 312,
			"tweet_count": 9999
		}
	}`

	var user User
	require.NoError(t, json.Unmarshal([]byte(body), &user))

	assert.Equal(t, "jonhoo", user.Username)
	assert.Equal(t, 40123, user.Metrics.Followers)
	assert.Equal(t, 312, user.Metrics.Following)
}

func TestMetaUnmarshal(t *testing.T) {
	var meta Meta
	require.NoError(t, json.Unmarshal([]byte(`{"result_count":100,"next_token":"7140dibdnow"}`), &meta))
	assert.Equal(t, 100, meta.ResultCount)
	assert.Equal(t, "7140dibdnow", meta.NextToken)
}
