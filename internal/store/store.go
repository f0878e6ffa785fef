// Package store provides key-value blob storage backends for QuitPulse.
//
// All persisted state is a small set of serialized records keyed by well-known
// names; backends only need to get, set, and delete opaque byte values.
// It includes an in-memory store for tests and SQLite/PostgreSQL stores for
// real deployments.
package store

import (
	"strings"
	"sync"
)

// Well-known keys for the persisted state layout.
const (
	KeySmokingEvents        = "smoking_events"
	KeyCravingEvents        = "craving_events"
	KeyUserSettings         = "user_settings"
	KeyQuitStartDate        = "quit_start_date"
	KeyCigarettesPerDay     = "cigarettes_per_day"
	KeyCigarettePrice       = "cigarette_price"
	KeyNotificationSettings = "notification_settings"
	KeyLastAppLaunch        = "last_app_launch"
	KeyPushSubscription     = "push_subscription"
)

// AllKeys lists every key the application persists, in layout order.
// DeleteAll-style operations iterate this list.
var AllKeys = []string{
	KeySmokingEvents,
	KeyCravingEvents,
	KeyUserSettings,
	KeyQuitStartDate,
	KeyCigarettesPerDay,
	KeyCigarettePrice,
	KeyNotificationSettings,
	KeyLastAppLaunch,
	KeyPushSubscription,
}

// KV is the minimal key-value contract shared by all backends.
// Get returns (nil, nil) when the key has never been written.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(keys ...string) error
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN configures a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite3" for anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// InMemoryKV is a simple in-memory key-value store used by tests and as the
// fallback when no database DSN is configured.
type InMemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryKV creates an empty in-memory store.
func NewInMemoryKV() *InMemoryKV {
	return &InMemoryKV{data: make(map[string][]byte)}
}

// Get returns the stored value, or (nil, nil) when absent.
func (s *InMemoryKV) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key.
func (s *InMemoryKV) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *InMemoryKV) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryKV) Close() error { return nil }
