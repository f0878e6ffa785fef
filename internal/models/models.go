// Package models defines the core data structures for QuitPulse.
//
// It includes the smoking/craving event log records, user and notification
// settings, and the derived statistics types shared across modules.
package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CravingIntensity describes how strong a logged craving was.
type CravingIntensity string

const (
	// IntensityLow marks a mild craving.
	IntensityLow CravingIntensity = "low"
	// IntensityMedium marks a moderate craving.
	IntensityMedium CravingIntensity = "medium"
	// IntensityHigh marks a strong craving.
	IntensityHigh CravingIntensity = "high"
)

// Default configuration values applied when no stored value exists or the
// stored value fails to decode.
const (
	// DefaultDailyCigarettes is the assumed pre-quit daily cigarette count.
	DefaultDailyCigarettes = 10
	// DefaultCigarettePrice is the assumed price per cigarette.
	DefaultCigarettePrice = 5.0
	// DefaultReminderTime is the daily reminder time in HH:MM format.
	DefaultReminderTime = "20:00"
)

// Error variables for better error handling and testability
var (
	ErrInvalidCigaretteCount = errors.New("cigarette count must be at least 1")
	ErrInvalidIntensity      = errors.New("invalid craving intensity")
	ErrDanglingDuration      = errors.New("resistance duration requires resisted=true")
	ErrMissingDuration       = errors.New("resisted craving requires a resistance duration")
	ErrInvalidBaseline       = errors.New("daily cigarette baseline must be positive")
	ErrInvalidPrice          = errors.New("cigarette price must be positive")
	ErrInvalidReminderTime   = errors.New("reminder time must be in HH:MM format")
)

// IsValidIntensity checks if the given craving intensity is supported.
func IsValidIntensity(ci CravingIntensity) bool {
	switch ci {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	default:
		return false
	}
}

// UnmarshalJSON decodes an intensity string, mapping unknown values to medium
// so that old or hand-edited data never fails to load.
func (ci *CravingIntensity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := CravingIntensity(raw)
	if !IsValidIntensity(parsed) {
		parsed = IntensityMedium
	}
	*ci = parsed
	return nil
}

// SmokingEvent records one logged instance of actually smoking.
// Events are immutable after creation; they are only appended or removed by
// bulk privacy operations.
type SmokingEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Cigarettes int       `json:"cigarettes"`
	Context    string    `json:"context,omitempty"`
	Resisted   bool      `json:"resisted"` // always false for this kind
}

// NewSmokingEvent creates a smoking event with a fresh unique ID.
func NewSmokingEvent(ts time.Time, cigarettes int, context string) SmokingEvent {
	return SmokingEvent{
		ID:         uuid.NewString(),
		Timestamp:  ts,
		Cigarettes: cigarettes,
		Context:    context,
	}
}

// Validate checks structural invariants of a smoking event.
func (e *SmokingEvent) Validate() error {
	if e.Cigarettes < 1 {
		return ErrInvalidCigaretteCount
	}
	return nil
}

// CravingEvent records one logged urge to smoke, with its outcome.
// ResistanceDuration is set if and only if Resisted is true.
type CravingEvent struct {
	ID                 string           `json:"id"`
	Timestamp          time.Time        `json:"timestamp"`
	Intensity          CravingIntensity `json:"intensity"`
	Context            string           `json:"context,omitempty"`
	Resisted           bool             `json:"resisted"`
	ResistanceDuration *float64         `json:"resistance_duration,omitempty"` // seconds
}

// NewCravingEvent creates an unresisted craving event with a fresh unique ID.
func NewCravingEvent(ts time.Time, intensity CravingIntensity, context string) CravingEvent {
	return CravingEvent{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Intensity: intensity,
		Context:   context,
	}
}

// NewResistedCravingEvent creates a craving event resolved by a successful
// resistance lasting the given number of seconds.
func NewResistedCravingEvent(ts time.Time, context string, durationSeconds float64) CravingEvent {
	return CravingEvent{
		ID:                 uuid.NewString(),
		Timestamp:          ts,
		Intensity:          IntensityHigh,
		Context:            context,
		Resisted:           true,
		ResistanceDuration: &durationSeconds,
	}
}

// Validate checks structural invariants of a craving event.
func (e *CravingEvent) Validate() error {
	if !IsValidIntensity(e.Intensity) {
		return ErrInvalidIntensity
	}
	if e.ResistanceDuration != nil && !e.Resisted {
		return ErrDanglingDuration
	}
	if e.Resisted && e.ResistanceDuration == nil {
		return ErrMissingDuration
	}
	return nil
}

// UserSettings holds the persisted user configuration.
type UserSettings struct {
	Name            *string   `json:"name,omitempty"`
	Age             *int      `json:"age,omitempty"`
	SmokingYears    *int      `json:"smoking_years,omitempty"`
	DailyCigarettes int       `json:"daily_cigarettes"`
	CigarettePrice  float64   `json:"cigarette_price"`
	QuitStartDate   time.Time `json:"quit_start_date"`
	NotifyEnabled   bool      `json:"notification_enabled"`
}

// DefaultUserSettings returns the documented defaults, with the quit start
// date anchored to the given instant (first app use).
func DefaultUserSettings(now time.Time) UserSettings {
	return UserSettings{
		DailyCigarettes: DefaultDailyCigarettes,
		CigarettePrice:  DefaultCigarettePrice,
		QuitStartDate:   now,
		NotifyEnabled:   true,
	}
}

// Validate checks configuration invariants on mutation.
// Load-time recovery is laxer on purpose: stored values that are zero or
// negative fall back to defaults without error (see tracker package).
func (s *UserSettings) Validate() error {
	if s.DailyCigarettes <= 0 {
		return ErrInvalidBaseline
	}
	if s.CigarettePrice <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// NotificationSettings holds the persisted notification preferences.
type NotificationSettings struct {
	HighRiskEnabled      bool   `json:"high_risk_enabled"`
	EncouragementEnabled bool   `json:"encouragement_enabled"`
	DailyReminderEnabled bool   `json:"daily_reminder_enabled"`
	DailyReminderTime    string `json:"daily_reminder_time"` // HH:MM
}

// DefaultNotificationSettings returns the documented defaults (everything on,
// reminder at 20:00).
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		HighRiskEnabled:      true,
		EncouragementEnabled: true,
		DailyReminderEnabled: true,
		DailyReminderTime:    DefaultReminderTime,
	}
}

// Validate checks the reminder time format.
func (s *NotificationSettings) Validate() error {
	if _, err := time.Parse("15:04", s.DailyReminderTime); err != nil {
		return ErrInvalidReminderTime
	}
	return nil
}

// TodayStats holds metrics derived from today's events.
//
// MoneySaved is computed literally as today's cigarettes times unit price,
// i.e. today's spend. The field name is kept literal to the stored record it
// feeds rather than silently corrected.
type TodayStats struct {
	Cigarettes int     `json:"cigarettes"`
	Resisted   int     `json:"resisted"`
	Cravings   int     `json:"cravings"`
	MoneySaved float64 `json:"money_saved"`
}

// Trend is the coarse weekly consumption direction.
type Trend string

const (
	// TrendImproving indicates the week's consumption is below half of baseline.
	TrendImproving Trend = "improving"
	// TrendWorsening indicates the week's consumption is at or above half of baseline.
	TrendWorsening Trend = "worsening"
)

// WeeklyStats holds metrics derived from the trailing 7-day window.
type WeeklyStats struct {
	CigarettesReduction int     `json:"cigarettes_reduction"`
	ResistedCount       int     `json:"resisted_count"`
	SuccessRate         float64 `json:"success_rate"` // percent, 0 when no cravings
	MoneySaved          float64 `json:"money_saved"`
	Trend               Trend   `json:"trend"`
}

// LifetimeStats holds metrics derived from the whole event log.
type LifetimeStats struct {
	MoneySaved          float64 `json:"money_saved"` // can be negative
	QuitDurationSeconds float64 `json:"quit_duration_seconds"`
}

// DataExport is the aggregate record produced by user-initiated export.
// There is no import path.
type DataExport struct {
	SmokingEvents        []SmokingEvent       `json:"smoking_events"`
	CravingEvents        []CravingEvent       `json:"craving_events"`
	UserSettings         UserSettings         `json:"user_settings"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
	ExportDate           time.Time            `json:"export_date"`
}
