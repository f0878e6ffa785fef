package risk

import (
	"testing"
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
)

// cravingsAtHours builds one craving event per entry, at the given hour of day.
func cravingsAtHours(hours []int) []models.CravingEvent {
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
	events := make([]models.CravingEvent, 0, len(hours))
	for _, h := range hours {
		events = append(events, models.NewCravingEvent(
			base.Add(time.Duration(h)*time.Hour), models.IntensityHigh, ""))
	}
	return events
}

func TestAnalyzeTopWindows(t *testing.T) {
	// 5 cravings at 20:00, 4 at 21:00, 1 at 09:00.
	var hours []int
	for i := 0; i < 5; i++ {
		hours = append(hours, 20)
	}
	for i := 0; i < 4; i++ {
		hours = append(hours, 21)
	}
	hours = append(hours, 9)

	windows := Analyze(cravingsAtHours(hours))
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	expected := []Window{
		{Hour: 20, CravingCount: 5, Context: "night"},
		{Hour: 21, CravingCount: 4, Context: "night"},
		{Hour: 9, CravingCount: 1, Context: "morning"},
	}
	for i, want := range expected {
		if windows[i] != want {
			t.Errorf("window %d: expected %+v, got %+v", i, want, windows[i])
		}
	}
}

func TestAnalyzeExcludesEmptyBuckets(t *testing.T) {
	windows := Analyze(cravingsAtHours([]int{14, 14}))
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Hour != 14 || windows[0].CravingCount != 2 {
		t.Errorf("unexpected window: %+v", windows[0])
	}
}

func TestAnalyzeEmptyLog(t *testing.T) {
	if got := Analyze(nil); len(got) != 0 {
		t.Errorf("expected no windows for empty log, got %d", len(got))
	}
}

func TestAnalyzeTieKeepsHourOrder(t *testing.T) {
	windows := Analyze(cravingsAtHours([]int{22, 8, 15}))
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	// All counts equal; the stable sort keeps ascending hour order.
	for i, wantHour := range []int{8, 15, 22} {
		if windows[i].Hour != wantHour {
			t.Errorf("window %d: expected hour %d, got %d", i, wantHour, windows[i].Hour)
		}
	}
}

func TestSchedulableAppliesThreshold(t *testing.T) {
	var hours []int
	for i := 0; i < 5; i++ {
		hours = append(hours, 20)
	}
	for i := 0; i < 4; i++ {
		hours = append(hours, 21)
	}
	hours = append(hours, 9)

	windows := Analyze(cravingsAtHours(hours))
	schedulable := Schedulable(windows)
	if len(schedulable) != 2 {
		t.Fatalf("expected 2 schedulable windows, got %d", len(schedulable))
	}
	for _, w := range schedulable {
		if w.CravingCount < SchedulingThreshold {
			t.Errorf("window below threshold forwarded: %+v", w)
		}
	}
	if schedulable[0].Hour != 20 || schedulable[1].Hour != 21 {
		t.Errorf("unexpected schedulable hours: %+v", schedulable)
	}
}

func TestContextForHour(t *testing.T) {
	cases := []struct {
		hour     int
		expected string
	}{
		{6, "morning"},
		{9, "morning"},
		{10, "forenoon"},
		{12, "forenoon"},
		{13, "afternoon"},
		{15, "afternoon"},
		{16, "evening"},
		{18, "evening"},
		{19, "night"},
		{22, "night"},
		{23, "late night"},
		{0, "late night"},
		{5, "late night"},
	}
	for _, tc := range cases {
		if got := ContextForHour(tc.hour); got != tc.expected {
			t.Errorf("hour %d: expected %q, got %q", tc.hour, tc.expected, got)
		}
	}
}
