package stats

import (
	"math"
	"sort"

	"ornithology/pkg/twitter"
)

// Notability thresholds. A tweet registers only when its score beats
// both the absolute floor and a multiple of the running average.
const (
	DefaultFloor      = 10.0
	DefaultMultiplier = 2.0
)

// Notable is a tweet that beat the author's running average when it
// was posted.
type Notable struct {
	Tweet twitter.Tweet

	// Ratio is the tweet's score over the running average at the time.
	// The very first outliers divide by a zero average and come out as
	// +Inf, which ranks them ahead of everything.
	Ratio float64

	// Average is the running average the tweet was measured against.
	Average float64
}

// FindNotable scans tweets oldest-first and flags each one whose
// metric beats max(multiplier*avg, floor), where avg is an
// exponentially-weighted running average of the metric (half the
// weight on the newest tweet). What makes a tweet notable is not its
// absolute numbers but how far it rose above what the author usually
// got back then.
//
// The result is ordered best first: by ratio, with the raw metric
// breaking ties.
func FindNotable(tweets []twitter.Tweet, metric Metric, floor, multiplier float64) []Notable {
	byTime := make([]twitter.Tweet, len(tweets))
	copy(byTime, tweets)
	sort.SliceStable(byTime, func(i, j int) bool {
		return byTime[i].Created.Before(byTime[j].Created)
	})

	avg := 0.0
	var notable []Notable
	for _, t := range byTime {
		limit := math.Max(multiplier*avg, floor)
		g := float64(metric(t))
		if g > limit {
			notable = append(notable, Notable{Tweet: t, Ratio: g / avg, Average: avg})
		}
		avg = 0.5*g + 0.5*avg
	}

	sort.SliceStable(notable, func(i, j int) bool {
		ki, kj := rankKey(notable[i].Ratio), rankKey(notable[j].Ratio)
		if ki != kj {
			return ki > kj
		}
		return metric(notable[i].Tweet) > metric(notable[j].Tweet)
	})
	return notable
}

// rankKey quantizes a ratio so that near-identical ratios tie and fall
// through to the raw metric.
func rankKey(ratio float64) float64 {
	if math.IsInf(ratio, 1) {
		return ratio
	}
	return math.Round(1000 * ratio)
}
