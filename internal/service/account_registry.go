package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"safarhub/internal/config"
	"safarhub/internal/domain"
)

// Ключи динамических настроек в таблице app_settings
const (
	settingAccountsKey   = "storage.accounts"
	settingCloudinaryKey = "storage.cloudinary"
)

// SettingsSource — динамический источник конфигурации (настройки админки)
type SettingsSource interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
}

// AccountRegistry хранит текущий список аккаунтов хранилища.
// Источники в порядке приоритета: настройки админки (список, затем
// одиночная форма), JSON-список из окружения, скалярные переменные окружения.
// Перезагрузка всегда замещает список целиком под мьютексом — повторные
// перезагрузки в одноаккаунтном режиме не накапливают дубликаты.
type AccountRegistry struct {
	settings SettingsSource
	cfg      config.StorageConfig

	mu       sync.RWMutex
	accounts []domain.StorageAccount
}

func NewAccountRegistry(settings SettingsSource, cfg config.StorageConfig) *AccountRegistry {
	return &AccountRegistry{
		settings: settings,
		cfg:      cfg,
	}
}

// Load перечитывает аккаунты из первого непустого источника.
// Идемпотентна, безопасна для повторных вызовов.
func (r *AccountRegistry) Load(ctx context.Context) []domain.StorageAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

func (r *AccountRegistry) loadLocked(ctx context.Context) []domain.StorageAccount {
	r.accounts = r.resolve(ctx)
	return append([]domain.StorageAccount(nil), r.accounts...)
}

// resolve проходит источники по порядку, побеждает первый непустой
func (r *AccountRegistry) resolve(ctx context.Context) []domain.StorageAccount {
	if r.settings != nil {
		// Список аккаунтов из настроек админки
		var list []domain.StorageAccountConfig
		err := r.settings.GetJSON(ctx, settingAccountsKey, &list)
		if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
			log.Printf("[Registry] Не удалось прочитать настройку %s: %v", settingAccountsKey, err)
		}
		if accounts := toAccounts(list); len(accounts) > 0 {
			return accounts
		}

		// Одиночная форма из настроек админки
		var single domain.StorageAccountConfig
		err = r.settings.GetJSON(ctx, settingCloudinaryKey, &single)
		if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
			log.Printf("[Registry] Не удалось прочитать настройку %s: %v", settingCloudinaryKey, err)
		}
		if err == nil && single.CloudName != "" {
			return []domain.StorageAccount{single.ToAccount()}
		}
	}

	// JSON-список из окружения
	if r.cfg.AccountsJSON != "" {
		var list []domain.StorageAccountConfig
		if err := json.Unmarshal([]byte(r.cfg.AccountsJSON), &list); err != nil {
			log.Printf("[Registry] Некорректный STORAGE_ACCOUNTS_JSON: %v", err)
		} else if accounts := toAccounts(list); len(accounts) > 0 {
			return accounts
		}
	}

	// Скалярные переменные окружения — одиночный аккаунт с квотой по умолчанию
	if r.cfg.CloudName != "" && r.cfg.APIKey != "" && r.cfg.APISecret != "" {
		single := domain.StorageAccountConfig{
			CloudName: r.cfg.CloudName,
			APIKey:    r.cfg.APIKey,
			APISecret: r.cfg.APISecret,
		}
		return []domain.StorageAccount{single.ToAccount()}
	}

	return nil
}

// GetAccounts возвращает последний загруженный набор аккаунтов.
// Пустой набор вызывает ровно одну попытку перезагрузки перед отказом.
func (r *AccountRegistry) GetAccounts(ctx context.Context) ([]domain.StorageAccount, error) {
	r.mu.RLock()
	if len(r.accounts) > 0 {
		accounts := append([]domain.StorageAccount(nil), r.accounts...)
		r.mu.RUnlock()
		return accounts, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Параллельный вызов мог уже перезагрузить список
	if len(r.accounts) == 0 {
		r.loadLocked(ctx)
	}
	if len(r.accounts) == 0 {
		return nil, domain.ErrNoStorageAccounts
	}

	return append([]domain.StorageAccount(nil), r.accounts...), nil
}

// FindAccount ищет аккаунт по имени среди сконфигурированных
func (r *AccountRegistry) FindAccount(ctx context.Context, name string) (domain.StorageAccount, bool) {
	accounts, err := r.GetAccounts(ctx)
	if err != nil {
		return domain.StorageAccount{}, false
	}

	for _, acc := range accounts {
		if acc.Name == name {
			return acc, true
		}
	}
	return domain.StorageAccount{}, false
}

func toAccounts(list []domain.StorageAccountConfig) []domain.StorageAccount {
	accounts := make([]domain.StorageAccount, 0, len(list))
	for _, c := range list {
		if c.CloudName == "" {
			continue
		}
		accounts = append(accounts, c.ToAccount())
	}
	return accounts
}
