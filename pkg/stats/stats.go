// Package stats ranks enriched tweets and followers.
//
// Tweet scores combine the public engagement counters in fixed
// weights; follower scores reward accounts that are followed by many
// but follow few. All-time rankings sort by a score directly, while
// the notability scan in this package flags tweets that beat the
// author's own running average at the time they were posted.
package stats

import (
	"math/rand/v2"
	"sort"

	"ornithology/pkg/twitter"
)

// Metric scores one tweet.
type Metric func(twitter.Tweet) int

// Goodness is the overall quality score of a tweet. Quotes weigh the
// most, then retweets, then likes; replies count half since long
// arguments inflate them.
func Goodness(t twitter.Tweet) int {
	return t.Metrics.Likes + 2*t.Metrics.Retweets + 3*t.Metrics.Quotes + t.Metrics.Replies/2
}

// Discussion scores how much conversation a tweet generated.
func Discussion(t twitter.Tweet) int {
	return 2*t.Metrics.Quotes + t.Metrics.Replies
}

// Spread scores how widely a tweet traveled beyond its author.
func Spread(t twitter.Tweet) int {
	return 2*t.Metrics.Quotes + t.Metrics.Retweets
}

// TopBy returns the n highest-scoring tweets, best first.
func TopBy(tweets []twitter.Tweet, metric Metric, n int) []twitter.Tweet {
	sorted := make([]twitter.Tweet, len(tweets))
	copy(sorted, tweets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric(sorted[i]) > metric(sorted[j])
	})
	return sorted[:min(n, len(sorted))]
}

// NeatScore rates how notable it is that an account follows you. An
// account with a million followers that also follows a million people
// probably follows everyone back; one that follows almost nobody chose
// to follow you.
func NeatScore(u twitter.User) int {
	return u.Metrics.Followers - 10*u.Metrics.Following
}

// TopFollowers returns the n followers with the largest audiences,
// biggest first.
func TopFollowers(users []twitter.User, n int) []twitter.User {
	sorted := make([]twitter.User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metrics.Followers > sorted[j].Metrics.Followers
	})
	return sorted[:min(n, len(sorted))]
}

// NeatFollowers returns the n followers with the best NeatScore, best
// first.
func NeatFollowers(users []twitter.User, n int) []twitter.User {
	sorted := make([]twitter.User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return NeatScore(sorted[i]) > NeatScore(sorted[j])
	})
	return sorted[:min(n, len(sorted))]
}

// Sample picks n ids uniformly without replacement. When n covers the
// whole input the ids come back in their original order.
func Sample(ids []uint64, n int) []uint64 {
	out := make([]uint64, len(ids))
	copy(out, ids)
	if n >= len(out) {
		return out
	}
	// Partial Fisher-Yates: only the first n positions matter.
	for i := 0; i < n; i++ {
		j := i + rand.IntN(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:n]
}
