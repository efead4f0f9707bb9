package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safarhub/internal/config"
	"safarhub/internal/domain"
)

// fakeSettings имитирует таблицу app_settings
type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) GetJSON(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.values[key]
	if !ok {
		return domain.ErrSettingNotFound
	}
	return json.Unmarshal([]byte(raw), dest)
}

func TestRegistrySettingsListWins(t *testing.T) {
	settings := &fakeSettings{values: map[string]string{
		"storage.accounts": `[
            {"name": "primary", "cloudName": "cloud-a", "apiKey": "k1", "apiSecret": "s1", "maxStorageGB": 10, "isActive": true},
            {"name": "secondary", "cloudName": "cloud-b", "apiKey": "k2", "apiSecret": "s2", "maxStorageGB": 50, "isActive": false}
        ]`,
	}}
	// Скалярные переменные окружения тоже заданы, но список из настроек важнее
	cfg := config.StorageConfig{CloudName: "env-cloud", APIKey: "k", APISecret: "s"}

	registry := NewAccountRegistry(settings, cfg)
	accounts := registry.Load(context.Background())

	require.Len(t, accounts, 2)
	assert.Equal(t, "primary", accounts[0].Name)
	assert.Equal(t, int64(10)*1024*1024*1024, accounts[0].MaxCapacityBytes)
	assert.True(t, accounts[0].Active)
	assert.Equal(t, "secondary", accounts[1].Name)
	assert.False(t, accounts[1].Active)
}

func TestRegistrySettingsSingleForm(t *testing.T) {
	settings := &fakeSettings{values: map[string]string{
		"storage.cloudinary": `{"cloudName": "solo", "apiKey": "k", "apiSecret": "s", "maxStorageGB": 5}`,
	}}

	registry := NewAccountRegistry(settings, config.StorageConfig{})
	accounts := registry.Load(context.Background())

	require.Len(t, accounts, 1)
	// Имя по умолчанию — cloudName
	assert.Equal(t, "solo", accounts[0].Name)
	assert.Equal(t, int64(5)*1024*1024*1024, accounts[0].MaxCapacityBytes)
	assert.True(t, accounts[0].Active)
}

func TestRegistryEnvJSONFallback(t *testing.T) {
	cfg := config.StorageConfig{
		AccountsJSON: `[{"cloudName": "from-env", "apiKey": "k", "apiSecret": "s", "maxStorageGB": 100}]`,
	}

	registry := NewAccountRegistry(&fakeSettings{}, cfg)
	accounts := registry.Load(context.Background())

	require.Len(t, accounts, 1)
	assert.Equal(t, "from-env", accounts[0].Name)
}

func TestRegistryScalarFallbackDefaultQuota(t *testing.T) {
	cfg := config.StorageConfig{CloudName: "scalar", APIKey: "k", APISecret: "s"}

	registry := NewAccountRegistry(&fakeSettings{}, cfg)
	accounts := registry.Load(context.Background())

	require.Len(t, accounts, 1)
	assert.Equal(t, "scalar", accounts[0].Name)
	// Неявная квота 25GB для скалярной формы
	assert.Equal(t, domain.DefaultAccountQuotaBytes, accounts[0].MaxCapacityBytes)
	assert.True(t, accounts[0].Active)
}

func TestRegistryReloadIdempotent(t *testing.T) {
	cfg := config.StorageConfig{CloudName: "scalar", APIKey: "k", APISecret: "s"}
	registry := NewAccountRegistry(&fakeSettings{}, cfg)

	// Повторная перезагрузка замещает список, а не дописывает его
	registry.Load(context.Background())
	registry.Load(context.Background())

	accounts, err := registry.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestRegistryGetAccountsLazyLoad(t *testing.T) {
	settings := &fakeSettings{values: map[string]string{
		"storage.cloudinary": `{"cloudName": "lazy", "apiKey": "k", "apiSecret": "s"}`,
	}}
	registry := NewAccountRegistry(settings, config.StorageConfig{})

	// Load явно не вызывался — пустой список вызывает одну перезагрузку
	accounts, err := registry.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "lazy", accounts[0].Name)
}

func TestRegistryEmptyConfiguration(t *testing.T) {
	registry := NewAccountRegistry(&fakeSettings{}, config.StorageConfig{})

	_, err := registry.GetAccounts(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoStorageAccounts)
}

func TestRegistryFindAccount(t *testing.T) {
	settings := &fakeSettings{values: map[string]string{
		"storage.accounts": `[{"name": "primary", "cloudName": "c", "apiKey": "k", "apiSecret": "s"}]`,
	}}
	registry := NewAccountRegistry(settings, config.StorageConfig{})

	found, ok := registry.FindAccount(context.Background(), "primary")
	require.True(t, ok)
	assert.Equal(t, "primary", found.Name)

	_, ok = registry.FindAccount(context.Background(), "missing")
	assert.False(t, ok)
}
