package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Setting keys for the persisted view.
const (
	KeyViewZoom     = "view.zoom"
	KeyViewRotation = "view.rotation"
)

// SettingsRepository stores key-value application settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces the value for key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// SaveView persists the current zoom and rotation.
func (r *SettingsRepository) SaveView(zoom, rotation float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.Exec(upsert, KeyViewZoom, strconv.FormatFloat(zoom, 'f', -1, 64)); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, KeyViewRotation, strconv.FormatFloat(rotation, 'f', -1, 64)); err != nil {
		return err
	}
	return tx.Commit()
}

// View returns the persisted zoom and rotation. It returns ErrNotFound when
// no view has been saved.
func (r *SettingsRepository) View() (zoom, rotation float64, err error) {
	zs, err := r.Get(KeyViewZoom)
	if err != nil {
		return 0, 0, err
	}
	rs, err := r.Get(KeyViewRotation)
	if err != nil {
		return 0, 0, err
	}

	if zoom, err = strconv.ParseFloat(zs, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid %s %q: %w", KeyViewZoom, zs, err)
	}
	if rotation, err = strconv.ParseFloat(rs, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid %s %q: %w", KeyViewRotation, rs, err)
	}
	return zoom, rotation, nil
}
