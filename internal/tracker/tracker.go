// Package tracker implements the event log and settings persistence for
// QuitPulse on top of a key-value blob store.
//
// It owns all JSON (de)serialization and the recovery policy for corrupt or
// missing stored records: a decode failure is logged once here and mapped to
// a documented default (empty collection or default settings). Storage
// problems never surface to callers as hard errors on the read path.
package tracker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quitpulse/QuitPulse/internal/models"
	"github.com/quitpulse/QuitPulse/internal/store"
)

// DefaultRetentionDays is how long events are kept by age-based cleanup.
const DefaultRetentionDays = 365

// anonymizedYear is the fixed reference year timestamps are collapsed onto by
// Anonymize. Only hour and minute survive the transform.
const anonymizedYear = 2000

// Opts holds configuration options for the tracker service.
type Opts struct {
	Clock func() time.Time
}

// Option defines a configuration option for the tracker service.
type Option func(*Opts)

// WithClock overrides the time source (used by tests).
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// Service is the event store and settings repository.
type Service struct {
	kv  store.KV
	now func() time.Time
}

// NewService creates a tracker service over the given key-value store.
func NewService(kv store.KV, opts ...Option) *Service {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{kv: kv, now: cfg.Clock}
}

// loadEvents decodes an event collection blob, degrading to empty on any
// storage or decode failure. This is the single place that policy lives.
func loadEvents[T any](s *Service, key string) []T {
	data, err := s.kv.Get(key)
	if err != nil {
		slog.Error("tracker: failed to read events, treating as empty", "key", key, "error", err)
		return []T{}
	}
	if data == nil {
		return []T{}
	}
	var events []T
	if err := json.Unmarshal(data, &events); err != nil {
		slog.Error("tracker: corrupt event blob, treating as empty", "key", key, "error", err)
		return []T{}
	}
	return events
}

func (s *Service) saveJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("tracker: failed to serialize record", "key", key, "error", err)
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := s.kv.Set(key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// SmokingEvents returns the full smoking event log, empty when nothing is
// stored or the stored blob is corrupt.
func (s *Service) SmokingEvents() []models.SmokingEvent {
	return loadEvents[models.SmokingEvent](s, store.KeySmokingEvents)
}

// CravingEvents returns the full craving event log, empty when nothing is
// stored or the stored blob is corrupt.
func (s *Service) CravingEvents() []models.CravingEvent {
	return loadEvents[models.CravingEvent](s, store.KeyCravingEvents)
}

// AppendSmokingEvent adds one event and persists the whole updated collection.
func (s *Service) AppendSmokingEvent(e models.SmokingEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	events := append(s.SmokingEvents(), e)
	if err := s.saveJSON(store.KeySmokingEvents, events); err != nil {
		return err
	}
	slog.Debug("tracker: smoking event appended", "id", e.ID, "cigarettes", e.Cigarettes)
	return nil
}

// AppendCravingEvent adds one event and persists the whole updated collection.
func (s *Service) AppendCravingEvent(e models.CravingEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	events := append(s.CravingEvents(), e)
	if err := s.saveJSON(store.KeyCravingEvents, events); err != nil {
		return err
	}
	slog.Debug("tracker: craving event appended", "id", e.ID, "resisted", e.Resisted)
	return nil
}

// Settings returns the stored user settings merged with the scalar override
// keys. Missing or corrupt records fall back to documented defaults; a stored
// baseline or price that is zero or negative also falls back at load time.
func (s *Service) Settings() models.UserSettings {
	settings := models.DefaultUserSettings(s.now())
	if data, err := s.kv.Get(store.KeyUserSettings); err != nil {
		slog.Error("tracker: failed to read user settings, using defaults", "error", err)
	} else if data != nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			slog.Error("tracker: corrupt user settings, using defaults", "error", err)
			settings = models.DefaultUserSettings(s.now())
		}
	}

	settings.DailyCigarettes = s.CigarettesPerDay()
	settings.CigarettePrice = s.CigarettePrice()
	settings.QuitStartDate = s.QuitStartDate()
	return settings
}

// SaveSettings persists the user settings record and its scalar keys.
func (s *Service) SaveSettings(settings models.UserSettings) error {
	if err := s.saveJSON(store.KeyUserSettings, settings); err != nil {
		return err
	}
	if err := s.saveJSON(store.KeyCigarettesPerDay, settings.DailyCigarettes); err != nil {
		return err
	}
	if err := s.saveJSON(store.KeyCigarettePrice, settings.CigarettePrice); err != nil {
		return err
	}
	return s.saveJSON(store.KeyQuitStartDate, settings.QuitStartDate)
}

// CigarettesPerDay returns the stored daily baseline, or the default when the
// stored value is absent, corrupt, or not positive.
func (s *Service) CigarettesPerDay() int {
	var count int
	if !s.loadScalar(store.KeyCigarettesPerDay, &count) || count <= 0 {
		return models.DefaultDailyCigarettes
	}
	return count
}

// CigarettePrice returns the stored unit price, or the default when the
// stored value is absent, corrupt, or not positive.
func (s *Service) CigarettePrice() float64 {
	var price float64
	if !s.loadScalar(store.KeyCigarettePrice, &price) || price <= 0 {
		return models.DefaultCigarettePrice
	}
	return price
}

// QuitStartDate returns the stored quit start date, or the current time when
// none is stored (first app use).
func (s *Service) QuitStartDate() time.Time {
	var date time.Time
	if !s.loadScalar(store.KeyQuitStartDate, &date) || date.IsZero() {
		return s.now()
	}
	return date
}

// loadScalar decodes a scalar key into v, reporting whether a usable value
// was present. Failures are logged and reported as absent.
func (s *Service) loadScalar(key string, v interface{}) bool {
	data, err := s.kv.Get(key)
	if err != nil {
		slog.Error("tracker: failed to read scalar, using default", "key", key, "error", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Error("tracker: corrupt scalar, using default", "key", key, "error", err)
		return false
	}
	return true
}

// NotificationSettings returns the stored notification preferences, or the
// documented defaults when absent or corrupt.
func (s *Service) NotificationSettings() models.NotificationSettings {
	settings := models.DefaultNotificationSettings()
	data, err := s.kv.Get(store.KeyNotificationSettings)
	if err != nil {
		slog.Error("tracker: failed to read notification settings, using defaults", "error", err)
		return settings
	}
	if data == nil {
		return settings
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Error("tracker: corrupt notification settings, using defaults", "error", err)
		return models.DefaultNotificationSettings()
	}
	return settings
}

// SaveNotificationSettings persists the notification preferences.
func (s *Service) SaveNotificationSettings(settings models.NotificationSettings) error {
	return s.saveJSON(store.KeyNotificationSettings, settings)
}

// RecordAppLaunch stores the current time as the last app launch.
func (s *Service) RecordAppLaunch() error {
	return s.saveJSON(store.KeyLastAppLaunch, s.now())
}

// LastAppLaunch returns the stored last launch time, or the zero time when
// none is recorded.
func (s *Service) LastAppLaunch() time.Time {
	var ts time.Time
	s.loadScalar(store.KeyLastAppLaunch, &ts)
	return ts
}

// DaysSinceLastLaunch returns whole days elapsed since the last recorded
// launch, or 0 when no launch is recorded.
func (s *Service) DaysSinceLastLaunch() int {
	last := s.LastAppLaunch()
	if last.IsZero() {
		return 0
	}
	days := int(s.now().Sub(last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// PurgeOlderThan removes all events with a timestamp strictly before cutoff
// from both collections and persists the results.
func (s *Service) PurgeOlderThan(cutoff time.Time) error {
	smoking := s.SmokingEvents()
	keptSmoking := smoking[:0]
	for _, e := range smoking {
		if !e.Timestamp.Before(cutoff) {
			keptSmoking = append(keptSmoking, e)
		}
	}
	if err := s.saveJSON(store.KeySmokingEvents, keptSmoking); err != nil {
		return err
	}

	craving := s.CravingEvents()
	keptCraving := craving[:0]
	for _, e := range craving {
		if !e.Timestamp.Before(cutoff) {
			keptCraving = append(keptCraving, e)
		}
	}
	if err := s.saveJSON(store.KeyCravingEvents, keptCraving); err != nil {
		return err
	}

	slog.Info("tracker: purged old events", "cutoff", cutoff,
		"smoking_removed", len(smoking)-len(keptSmoking),
		"craving_removed", len(craving)-len(keptCraving))
	return nil
}

// CleanupOldData purges events older than the default retention window.
func (s *Service) CleanupOldData() error {
	return s.PurgeOlderThan(s.now().AddDate(0, 0, -DefaultRetentionDays))
}

// anonymizeTimestamp collapses a timestamp onto the fixed reference date,
// keeping only hour and minute. Applying it twice yields the same result.
func anonymizeTimestamp(ts time.Time) time.Time {
	return time.Date(anonymizedYear, time.January, 1, ts.Hour(), ts.Minute(), 0, 0, ts.Location())
}

// Anonymize strips identifying data: profile fields are cleared from user
// settings and every event timestamp loses its date component. This is a
// one-way, destructive transform.
func (s *Service) Anonymize() error {
	settings := s.Settings()
	settings.Name = nil
	settings.Age = nil
	if err := s.SaveSettings(settings); err != nil {
		return err
	}

	smoking := s.SmokingEvents()
	for i := range smoking {
		smoking[i].Timestamp = anonymizeTimestamp(smoking[i].Timestamp)
	}
	if err := s.saveJSON(store.KeySmokingEvents, smoking); err != nil {
		return err
	}

	craving := s.CravingEvents()
	for i := range craving {
		craving[i].Timestamp = anonymizeTimestamp(craving[i].Timestamp)
	}
	if err := s.saveJSON(store.KeyCravingEvents, craving); err != nil {
		return err
	}

	slog.Info("tracker: data anonymized", "smoking_events", len(smoking), "craving_events", len(craving))
	return nil
}

// DeleteAll removes every persisted key: events, settings, and launch record.
func (s *Service) DeleteAll() error {
	if err := s.kv.Delete(store.AllKeys...); err != nil {
		return fmt.Errorf("failed to delete stored data: %w", err)
	}
	slog.Info("tracker: all user data deleted")
	return nil
}

// Export assembles the aggregate export record from everything stored.
func (s *Service) Export() (models.DataExport, error) {
	export := models.DataExport{
		SmokingEvents:        s.SmokingEvents(),
		CravingEvents:        s.CravingEvents(),
		UserSettings:         s.Settings(),
		NotificationSettings: s.NotificationSettings(),
		ExportDate:           s.now(),
	}
	return export, nil
}

// SavePushSubscription stores the web-push subscription blob as-is.
func (s *Service) SavePushSubscription(raw []byte) error {
	if err := s.kv.Set(store.KeyPushSubscription, raw); err != nil {
		return fmt.Errorf("failed to persist push subscription: %w", err)
	}
	return nil
}

// PushSubscription returns the stored web-push subscription blob, or nil when
// none is registered.
func (s *Service) PushSubscription() []byte {
	data, err := s.kv.Get(store.KeyPushSubscription)
	if err != nil {
		slog.Error("tracker: failed to read push subscription", "error", err)
		return nil
	}
	return data
}
