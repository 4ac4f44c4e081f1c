package storage

import (
	"database/sql"
	"fmt"
)

// ─────────────────────────────────────────────────────────────
// Settings store — small key/value blobs in app_settings
// ─────────────────────────────────────────────────────────────

// SettingsStore reads and writes string blobs keyed by name.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the stored value for key, or "" with found=false.
func (s *SettingsStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.Conn().QueryRow(
		`SELECT value FROM app_settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a single key.
func (s *SettingsStore) Set(key, value string) error {
	return upsertSetting(s.db.Conn(), key, value)
}

// SetAll upserts every key in one transaction, so a set of related
// entries either all land or none do.
func (s *SettingsStore) SetAll(entries map[string]string) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	for key, value := range entries {
		if err := upsertSetting(tx, key, value); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings tx: %w", err)
	}
	return nil
}

// execer lets upsertSetting run against *sql.DB or *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertSetting(conn execer, key, value string) error {
	_, err := conn.Exec(
		`INSERT INTO app_settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
