// Package store provides key-value blob storage backends for QuitPulse.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteKV is a SQLite-backed key-value store.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteKV(opts ...Option) (*SQLiteKV, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteKV invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteKV DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteKV{db: db}, nil
}

// Get returns the stored value for key, or (nil, nil) when absent.
func (s *SQLiteKV) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv_blobs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteKV Get: key absent", "key", key)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteKV Get failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to get value for %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any existing value.
func (s *SQLiteKV) Set(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO kv_blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, key, value)
	if err != nil {
		slog.Error("SQLiteKV Set failed", "error", err, "key", key)
		return fmt.Errorf("failed to set value for %s: %w", key, err)
	}
	slog.Debug("SQLiteKV Set succeeded", "key", key, "bytes", len(value))
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *SQLiteKV) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM kv_blobs WHERE key = ?`, key); err != nil {
			slog.Error("SQLiteKV Delete failed", "error", err, "key", key)
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	slog.Debug("SQLiteKV Delete succeeded", "count", len(keys))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteKV) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
