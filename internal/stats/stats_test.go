package stats

import (
	"math"
	"testing"
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
)

func settingsWith(baseline int, price float64, quitStart time.Time) models.UserSettings {
	s := models.DefaultUserSettings(quitStart)
	s.DailyCigarettes = baseline
	s.CigarettePrice = price
	return s
}

func TestTodayCountsOnlyCalendarDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.Local)
	smoking := []models.SmokingEvent{
		models.NewSmokingEvent(now.Add(-2*time.Hour), 2, ""),            // today 13:00
		models.NewSmokingEvent(now.Add(-14*time.Hour), 1, ""),           // today 01:00
		models.NewSmokingEvent(now.AddDate(0, 0, -1), 5, ""),            // yesterday
		models.NewSmokingEvent(now.Add(9*time.Hour+time.Minute), 3, ""), // tomorrow 00:01
	}
	craving := []models.CravingEvent{
		models.NewResistedCravingEvent(now.Add(-time.Hour), "", 60),
		models.NewCravingEvent(now.Add(-3*time.Hour), models.IntensityHigh, ""),
		models.NewCravingEvent(now.AddDate(0, 0, -2), models.IntensityLow, ""),
	}

	settings := settingsWith(10, 0.6, now.AddDate(0, 0, -30))
	got := Today(smoking, craving, settings, now)

	if got.Cigarettes != 3 {
		t.Errorf("expected 3 cigarettes today, got %d", got.Cigarettes)
	}
	if got.Cravings != 2 {
		t.Errorf("expected 2 cravings today, got %d", got.Cravings)
	}
	if got.Resisted != 1 {
		t.Errorf("expected 1 resisted today, got %d", got.Resisted)
	}
	if got.Resisted > got.Cravings {
		t.Error("resisted count exceeds craving count")
	}
	if want := float64(got.Cigarettes) * settings.CigarettePrice; got.MoneySaved != want {
		t.Errorf("expected money figure %v, got %v", want, got.MoneySaved)
	}
}

func TestTodayEmptyLog(t *testing.T) {
	now := time.Now()
	got := Today(nil, nil, settingsWith(10, 5, now), now)
	if got.Cigarettes != 0 || got.Cravings != 0 || got.Resisted != 0 || got.MoneySaved != 0 {
		t.Errorf("expected zero stats for empty log, got %+v", got)
	}
}

func TestLifetimeMoneySavedExample(t *testing.T) {
	// 20/day baseline at price 10, 3 days since quitting, 10 smoked:
	// (20*3 - 10) * 10 = 500.
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	quitStart := now.AddDate(0, 0, -3)
	settings := settingsWith(20, 10, quitStart)
	smoking := []models.SmokingEvent{
		models.NewSmokingEvent(now.Add(-time.Hour), 10, ""),
	}

	got := LifetimeMoneySaved(smoking, settings, now)
	if math.Abs(got-500) > 1e-9 {
		t.Errorf("expected 500, got %v", got)
	}
}

func TestLifetimeMoneySavedUsesFractionalDays(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	quitStart := now.Add(-36 * time.Hour) // 1.5 days
	settings := settingsWith(10, 2, quitStart)

	got := LifetimeMoneySaved(nil, settings, now)
	// expected = 10 * 1.5 = 15 cigarettes avoided, at price 2 -> 30.
	if math.Abs(got-30) > 1e-9 {
		t.Errorf("expected 30 for fractional quit duration, got %v", got)
	}
}

func TestLifetimeMoneySavedCanBeNegative(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	settings := settingsWith(10, 5, now.AddDate(0, 0, -1))
	smoking := []models.SmokingEvent{
		models.NewSmokingEvent(now.Add(-time.Hour), 50, ""),
	}

	if got := LifetimeMoneySaved(smoking, settings, now); got >= 0 {
		t.Errorf("expected negative savings when smoking above baseline, got %v", got)
	}
}

func TestQuitDurationMayBeNegative(t *testing.T) {
	now := time.Now()
	settings := settingsWith(10, 5, now.Add(time.Hour))
	if got := QuitDuration(settings, now); got >= 0 {
		t.Errorf("expected negative duration for future quit date, got %v", got)
	}
}

func TestWeeklyReductionClampedAtZero(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	settings := settingsWith(10, 5, now.AddDate(0, 0, -30))
	smoking := []models.SmokingEvent{
		models.NewSmokingEvent(now.Add(-time.Hour), 100, ""),
	}

	got := Weekly(smoking, nil, settings, now)
	if got.CigarettesReduction != 0 {
		t.Errorf("expected reduction clamped at 0, got %d", got.CigarettesReduction)
	}
	if got.MoneySaved != 0 {
		t.Errorf("expected money saved 0 when reduction clamped, got %v", got.MoneySaved)
	}
	if got.Trend != models.TrendWorsening {
		t.Errorf("expected worsening trend, got %q", got.Trend)
	}
}

func TestWeeklySuccessRate(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	settings := settingsWith(10, 5, now.AddDate(0, 0, -30))

	// No cravings: rate defined as 0, not NaN.
	got := Weekly(nil, nil, settings, now)
	if got.SuccessRate != 0 {
		t.Errorf("expected 0 success rate with no cravings, got %v", got.SuccessRate)
	}

	craving := []models.CravingEvent{
		models.NewResistedCravingEvent(now.Add(-time.Hour), "", 60),
		models.NewResistedCravingEvent(now.Add(-2*time.Hour), "", 90),
		models.NewCravingEvent(now.Add(-3*time.Hour), models.IntensityHigh, ""),
		models.NewCravingEvent(now.AddDate(0, 0, -10), models.IntensityHigh, ""), // outside window
	}
	got = Weekly(nil, craving, settings, now)
	want := 2.0 / 3.0 * 100
	if math.Abs(got.SuccessRate-want) > 1e-9 {
		t.Errorf("expected success rate %v, got %v", want, got.SuccessRate)
	}
	if got.SuccessRate < 0 || got.SuccessRate > 100 {
		t.Errorf("success rate out of bounds: %v", got.SuccessRate)
	}
	if got.ResistedCount != 2 {
		t.Errorf("expected 2 resisted in window, got %d", got.ResistedCount)
	}
}

func TestWeeklyTrendThreshold(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	settings := settingsWith(10, 5, now.AddDate(0, 0, -30)) // weekly baseline 70, half = 35

	smoke := func(n int) []models.SmokingEvent {
		return []models.SmokingEvent{models.NewSmokingEvent(now.Add(-time.Hour), n, "")}
	}

	if got := Weekly(smoke(34), nil, settings, now); got.Trend != models.TrendImproving {
		t.Errorf("34 < 35: expected improving, got %q", got.Trend)
	}
	if got := Weekly(smoke(35), nil, settings, now); got.Trend != models.TrendWorsening {
		t.Errorf("35 == half baseline: expected worsening, got %q", got.Trend)
	}
}

func TestLastSmokeTime(t *testing.T) {
	if got := LastSmokeTime(nil); !got.IsZero() {
		t.Errorf("expected zero time for empty log, got %v", got)
	}

	now := time.Now()
	smoking := []models.SmokingEvent{
		models.NewSmokingEvent(now.Add(-time.Hour), 1, ""),
		models.NewSmokingEvent(now, 1, ""),
		models.NewSmokingEvent(now.Add(-30*time.Minute), 1, ""),
	}
	if got := LastSmokeTime(smoking); !got.Equal(now) {
		t.Errorf("expected max timestamp %v, got %v", now, got)
	}
}
