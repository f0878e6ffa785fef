// Package store provides key-value blob storage backends for QuitPulse.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresKV is a PostgreSQL-backed key-value store.
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV creates a new Postgres store based on provided options.
func NewPostgresKV(opts ...Option) (*PostgresKV, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresKV invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresKV DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresKV{db: db}, nil
}

// Get returns the stored value for key, or (nil, nil) when absent.
func (s *PostgresKV) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv_blobs WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresKV Get: key absent", "key", key)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresKV Get failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to get value for %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (s *PostgresKV) Set(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO kv_blobs (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, key, value)
	if err != nil {
		slog.Error("PostgresKV Set failed", "error", err, "key", key)
		return fmt.Errorf("failed to set value for %s: %w", key, err)
	}
	slog.Debug("PostgresKV Set succeeded", "key", key, "bytes", len(value))
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *PostgresKV) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM kv_blobs WHERE key = $1`, key); err != nil {
			slog.Error("PostgresKV Delete failed", "error", err, "key", key)
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	slog.Debug("PostgresKV Delete succeeded", "count", len(keys))
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresKV) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
