// Package risk identifies the hours of day with the most logged cravings.
//
// The analysis is a point-in-time snapshot over the full craving log; it
// holds no state of its own and is recomputed on every request.
package risk

import (
	"sort"

	"github.com/quitpulse/QuitPulse/internal/models"
)

const (
	// TopWindowCount is how many peak hours the analysis returns.
	TopWindowCount = 3
	// SchedulingThreshold is the minimum craving count for a window to be
	// forwarded to notification scheduling. Windows below the threshold are
	// still returned by Analyze.
	SchedulingThreshold = 3
)

// Window is one high-risk hour-of-day bucket.
type Window struct {
	Hour         int    `json:"hour"`
	CravingCount int    `json:"craving_count"`
	Context      string `json:"context"`
}

// Analyze builds a 24-bucket histogram over the craving log's hour of day
// (local time) and returns the top hours by count, excluding empty buckets.
// The sort is stable descending by count, so ties keep hour order.
func Analyze(events []models.CravingEvent) []Window {
	var counts [24]int
	for _, e := range events {
		counts[e.Timestamp.Hour()]++
	}

	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return counts[hours[i]] > counts[hours[j]]
	})

	var windows []Window
	for _, h := range hours[:TopWindowCount] {
		if counts[h] == 0 {
			continue
		}
		windows = append(windows, Window{
			Hour:         h,
			CravingCount: counts[h],
			Context:      ContextForHour(h),
		})
	}
	return windows
}

// Schedulable filters the analyzed windows down to those that meet the
// scheduling threshold.
func Schedulable(windows []Window) []Window {
	var out []Window
	for _, w := range windows {
		if w.CravingCount >= SchedulingThreshold {
			out = append(out, w)
		}
	}
	return out
}

// ContextForHour labels an hour of day with a human-readable time-of-day
// context used in notification copy.
func ContextForHour(hour int) string {
	switch {
	case hour >= 6 && hour <= 9:
		return "morning"
	case hour >= 10 && hour <= 12:
		return "forenoon"
	case hour >= 13 && hour <= 15:
		return "afternoon"
	case hour >= 16 && hour <= 18:
		return "evening"
	case hour >= 19 && hour <= 22:
		return "night"
	default: // 23:00 through 05:00
		return "late night"
	}
}
