// Package insights produces behavioral insights from the user's statistics.
//
// The default generator returns curated insights after a simulated network
// delay; an optional OpenAI-backed generator builds them from the user's
// actual numbers and falls back to the curated set on any failure.
package insights

import (
	"context"
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
	"github.com/quitpulse/QuitPulse/internal/risk"
)

// Confidence grades how well-supported an insight is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Category groups insights by what they describe.
type Category string

const (
	CategoryPattern  Category = "pattern"
	CategoryStrategy Category = "strategy"
	CategoryTrigger  Category = "trigger"
	CategoryBehavior Category = "behavior"
	CategoryProgress Category = "progress"
)

// Insight is one generated observation with an actionable tip.
type Insight struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
	Category    Category   `json:"category"`
	ActionTip   string     `json:"action_tip"`
	DataPoints  []string   `json:"data_points,omitempty"`
}

// Snapshot is the statistics bundle insights are generated from.
type Snapshot struct {
	Today    models.TodayStats  `json:"today"`
	Weekly   models.WeeklyStats `json:"weekly"`
	Windows  []risk.Window      `json:"high_risk_windows"`
	QuitDays float64            `json:"quit_days"`
}

// Generator produces insights from a statistics snapshot.
type Generator interface {
	Generate(ctx context.Context, snap Snapshot) ([]Insight, error)
}

// DefaultDelay simulates the latency of a remote analysis service.
const DefaultDelay = time.Second

// StaticGenerator returns a fixed set of curated insights after a delay.
type StaticGenerator struct {
	Delay time.Duration
}

// NewStaticGenerator creates a static generator with the default delay.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{Delay: DefaultDelay}
}

// Generate waits out the simulated delay (honoring context cancellation) and
// returns the curated insight set.
func (g *StaticGenerator) Generate(ctx context.Context, snap Snapshot) ([]Insight, error) {
	delay := g.Delay
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return curatedInsights(), nil
}

func curatedInsights() []Insight {
	return []Insight{
		{
			Title:       "Time pattern recognition",
			Description: "Your cravings cluster in the evening between 8 and 10 PM, likely a habitual after-dinner response.",
			Confidence:  ConfidenceHigh,
			Category:    CategoryPattern,
			ActionTip:   "Plan another activity for that window, like a walk or some reading.",
			DataPoints:  []string{"5 of the past week's cravings fell in this window", "success rate 30% lower than other hours"},
		},
		{
			Title:       "Delayed gratification works",
			Description: "When you use the five-minute delay strategy, your odds of resisting a craving rise by 65%.",
			Confidence:  ConfidenceMedium,
			Category:    CategoryStrategy,
			ActionTip:   "Next craving, tell yourself to wait five minutes before deciding.",
			DataPoints:  []string{"delay strategy success rate 85%", "acting immediately succeeds only 20% of the time"},
		},
		{
			Title:       "Stress is your main trigger",
			Description: "Work stress precedes about 40% of your logged cravings.",
			Confidence:  ConfidenceHigh,
			Category:    CategoryTrigger,
			ActionTip:   "Try deep breathing or a short break instead of a cigarette when pressure builds.",
			DataPoints:  []string{"40% of cravings tied to work stress", "consumption rises 50% under stress"},
		},
		{
			Title:       "Your best substitutes",
			Description: "Drinking water and deep breathing are your most effective substitute behaviors.",
			Confidence:  ConfidenceMedium,
			Category:    CategoryBehavior,
			ActionTip:   "Keep a glass of water at your desk and start with a big sip when a craving hits.",
			DataPoints:  []string{"water 78% success", "deep breathing 72% success", "walking 65% success"},
		},
		{
			Title:       "You are trending up",
			Description: "Over the past two weeks your daily consumption dropped 35% and your resistance rate rose 20%.",
			Confidence:  ConfidenceHigh,
			Category:    CategoryProgress,
			ActionTip:   "Keep your current strategy. You are building a new habit.",
			DataPoints:  []string{"consumption down 35%", "resistance rate up 20%", "craving frequency down 15%"},
		},
	}
}
