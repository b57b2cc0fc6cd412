package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/josh-kwaku/edificio/internal/domain"
)

type SettingRepository struct {
	db *DB
}

func NewSettingRepository(db *DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*domain.ReportSetting, error) {
	var s domain.ReportSetting
	err := r.db.q(ctx).QueryRowContext(ctx,
		`SELECT setting_key, setting_value, updated_at FROM report_settings WHERE setting_key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, mapError("Get", err)
	}
	return &s, nil
}

func (r *SettingRepository) Set(ctx context.Context, key, value string, now time.Time) error {
	_, err := r.db.q(ctx).ExecContext(ctx,
		`INSERT INTO report_settings (setting_key, setting_value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at`,
		key, value, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}
