// Package stats derives today/weekly/lifetime metrics from the event log.
//
// Every function here is a pure computation over (events, settings, now);
// results are recomputed on each read and never cached.
package stats

import (
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
)

const secondsPerDay = 24 * 3600

// sameDay reports whether two instants fall on the same calendar day in the
// reference time's location.
func sameDay(t, ref time.Time) bool {
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.Month() == ref.Month() && t.Day() == ref.Day()
}

// Today computes today's statistics.
//
// MoneySaved is today's spend (cigarettes times unit price), not savings
// against baseline; the literal computation is deliberate.
func Today(smoking []models.SmokingEvent, craving []models.CravingEvent, settings models.UserSettings, now time.Time) models.TodayStats {
	var stats models.TodayStats
	for _, e := range smoking {
		if sameDay(e.Timestamp, now) {
			stats.Cigarettes += e.Cigarettes
		}
	}
	for _, e := range craving {
		if sameDay(e.Timestamp, now) {
			stats.Cravings++
			if e.Resisted {
				stats.Resisted++
			}
		}
	}
	stats.MoneySaved = float64(stats.Cigarettes) * settings.CigarettePrice
	return stats
}

// QuitDuration returns the elapsed time since the quit start date.
// It may be negative when the quit start date is in the future; that is not
// validated here.
func QuitDuration(settings models.UserSettings, now time.Time) time.Duration {
	return now.Sub(settings.QuitStartDate)
}

// LifetimeMoneySaved projects the no-quit baseline consumption continuously
// over the quit duration (fractional days, not day-bucketed) and prices the
// difference against actual consumption. The result can be negative when
// actual consumption exceeds the projection; that is expected and not
// clamped.
func LifetimeMoneySaved(smoking []models.SmokingEvent, settings models.UserSettings, now time.Time) float64 {
	actual := 0
	for _, e := range smoking {
		actual += e.Cigarettes
	}
	expected := float64(settings.DailyCigarettes) * (QuitDuration(settings, now).Seconds() / secondsPerDay)
	return (expected - float64(actual)) * settings.CigarettePrice
}

// Lifetime bundles the lifetime money projection with the quit duration.
func Lifetime(smoking []models.SmokingEvent, settings models.UserSettings, now time.Time) models.LifetimeStats {
	return models.LifetimeStats{
		MoneySaved:          LifetimeMoneySaved(smoking, settings, now),
		QuitDurationSeconds: QuitDuration(settings, now).Seconds(),
	}
}

// Weekly computes statistics over the trailing 7-day window [now-7d, now].
//
// SuccessRate is defined as 0 when no cravings fall in the window. Trend is a
// coarse binary threshold against half the weekly baseline, not a regression.
func Weekly(smoking []models.SmokingEvent, craving []models.CravingEvent, settings models.UserSettings, now time.Time) models.WeeklyStats {
	weekAgo := now.AddDate(0, 0, -7)
	inWindow := func(ts time.Time) bool {
		return !ts.Before(weekAgo) && !ts.After(now)
	}

	cigarettesThisWeek := 0
	for _, e := range smoking {
		if inWindow(e.Timestamp) {
			cigarettesThisWeek += e.Cigarettes
		}
	}

	resisted, total := 0, 0
	for _, e := range craving {
		if inWindow(e.Timestamp) {
			total++
			if e.Resisted {
				resisted++
			}
		}
	}

	expected := settings.DailyCigarettes * 7
	reduction := expected - cigarettesThisWeek
	if reduction < 0 {
		reduction = 0
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(resisted) / float64(total) * 100
	}

	trend := models.TrendWorsening
	if cigarettesThisWeek < expected/2 {
		trend = models.TrendImproving
	}

	return models.WeeklyStats{
		CigarettesReduction: reduction,
		ResistedCount:       resisted,
		SuccessRate:         successRate,
		MoneySaved:          float64(reduction) * settings.CigarettePrice,
		Trend:               trend,
	}
}

// LastSmokeTime returns the most recent smoking event timestamp, or the zero
// time when no events exist. The log is not sorted at insertion, so this
// scans for the maximum.
func LastSmokeTime(smoking []models.SmokingEvent) time.Time {
	var last time.Time
	for _, e := range smoking {
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return last
}
