package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetSetting retrieves a setting value by key. Missing keys return an empty string.
func (db *DB) GetSetting(key string) (string, error) {
	return db.GetSettingContext(context.Background(), key)
}

// GetSettingContext is GetSetting bound to ctx
func (db *DB) GetSettingContext(ctx context.Context, key string) (string, error) {
	var value string
	err := db.queryRow(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a setting value
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.exec(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// ListSettings returns every stored setting keyed by name
func (db *DB) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := db.query(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// DeleteSetting removes a stored setting so its default applies again
func (db *DB) DeleteSetting(ctx context.Context, key string) error {
	if _, err := db.exec(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
