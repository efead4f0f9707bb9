package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"safarhub/internal/domain"
)

// SettingsRepository читает динамические настройки админки из таблицы
// app_settings (key -> JSON)
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetJSON читает значение настройки и декодирует его в dest
func (r *SettingsRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	var raw []byte
	err := r.db.GetContext(ctx, &raw, `SELECT value FROM app_settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSettingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}

	return nil
}
