package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"atelierlux/api/models"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingStore persists the admin-editable content blocks of the site as
// key -> JSON value rows.
type SettingStore struct {
	db *sql.DB
}

func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) Get(ctx context.Context, key string) (*models.SiteSetting, error) {
	setting := &models.SiteSetting{}
	var value []byte
	query := `
		SELECT key, value, updated_at
		FROM site_settings
		WHERE key = $1;
	`
	err := s.db.QueryRowContext(ctx, query, key).Scan(&setting.Key, &value, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	setting.Value = json.RawMessage(value)

	return setting, nil
}

func (s *SettingStore) List(ctx context.Context) ([]models.SiteSetting, error) {
	query := `
		SELECT key, value, updated_at
		FROM site_settings
		ORDER BY key;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []models.SiteSetting
	for rows.Next() {
		var setting models.SiteSetting
		var value []byte
		if err := rows.Scan(&setting.Key, &value, &setting.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		setting.Value = json.RawMessage(value)
		settings = append(settings, setting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}

	return settings, nil
}

// Upsert creates or replaces a content block.
func (s *SettingStore) Upsert(ctx context.Context, key string, value json.RawMessage) (*models.SiteSetting, error) {
	setting := &models.SiteSetting{}
	var stored []byte
	query := `
		INSERT INTO site_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING key, value, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, key, []byte(value)).Scan(&setting.Key, &stored, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	setting.Value = json.RawMessage(stored)

	return setting, nil
}

func (s *SettingStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM site_settings WHERE key = $1;`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result for %q: %w", key, err)
	}
	if affected == 0 {
		return ErrSettingNotFound
	}
	return nil
}
