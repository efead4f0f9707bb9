package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safarhub/internal/domain"
)

func account(name string, capacity int64, active bool) domain.StorageAccount {
	return domain.StorageAccount{
		Name:             name,
		CloudName:        name,
		APIKey:           "key",
		APISecret:        "secret",
		MaxCapacityBytes: capacity,
		Active:           active,
	}
}

func TestBuildSnapshots(t *testing.T) {
	accounts := []domain.StorageAccount{
		account("a", 1000, true),
		account("b", 1000, true),
	}
	usages := []domain.AccountUsage{
		{StorageAccount: "a", UsedBytes: 946, FileCount: 12},
	}

	snapshots := BuildSnapshots(accounts, usages)
	require.Len(t, snapshots, 2)

	assert.Equal(t, "a", snapshots[0].AccountName)
	assert.Equal(t, int64(946), snapshots[0].UsedBytes)
	assert.Equal(t, int64(54), snapshots[0].AvailableBytes)
	assert.Equal(t, int64(12), snapshots[0].FileCount)
	assert.Equal(t, int64(95), snapshots[0].UsagePercent)

	// Аккаунт без файлов получает нулевой агрегат
	assert.Equal(t, "b", snapshots[1].AccountName)
	assert.Equal(t, int64(0), snapshots[1].UsedBytes)
	assert.Equal(t, int64(1000), snapshots[1].AvailableBytes)
	assert.Equal(t, int64(0), snapshots[1].UsagePercent)
}

func TestBuildSnapshotsOverQuota(t *testing.T) {
	accounts := []domain.StorageAccount{account("a", 1000, true)}
	usages := []domain.AccountUsage{{StorageAccount: "a", UsedBytes: 1200, FileCount: 3}}

	snapshots := BuildSnapshots(accounts, usages)
	require.Len(t, snapshots, 1)

	// Отрицательный остаток не ограничивается нулем
	assert.Equal(t, int64(-200), snapshots[0].AvailableBytes)
	assert.Equal(t, int64(120), snapshots[0].UsagePercent)
}

func TestSelectAccountPrefersLeastLoaded(t *testing.T) {
	accounts := []domain.StorageAccount{
		account("a", 1000, true),
		account("b", 1000, true),
		account("c", 1000, true),
	}
	usages := []domain.AccountUsage{
		{StorageAccount: "a", UsedBytes: 950},
		{StorageAccount: "b", UsedBytes: 500},
		{StorageAccount: "c", UsedBytes: 800},
	}

	selected, err := SelectAccount(accounts, BuildSnapshots(accounts, usages))
	require.NoError(t, err)
	assert.Equal(t, "b", selected.Name)
}

func TestSelectAccountDegradesWhenAllAboveThreshold(t *testing.T) {
	accounts := []domain.StorageAccount{
		account("a", 1000, true),
		account("b", 1000, true),
		account("c", 1000, true),
	}
	usages := []domain.AccountUsage{
		{StorageAccount: "a", UsedBytes: 950},
		{StorageAccount: "b", UsedBytes: 920},
		{StorageAccount: "c", UsedBytes: 900},
	}

	// Все выше мягкого порога — выбираем с наибольшим остатком вместо отказа
	selected, err := SelectAccount(accounts, BuildSnapshots(accounts, usages))
	require.NoError(t, err)
	assert.Equal(t, "c", selected.Name)
}

func TestSelectAccountSkipsInactive(t *testing.T) {
	accounts := []domain.StorageAccount{
		account("a", 1000, true),
		account("b", 1000, false),
	}
	usages := []domain.AccountUsage{
		{StorageAccount: "a", UsedBytes: 100},
		{StorageAccount: "b", UsedBytes: 50},
	}

	// У неактивного больше места, но он не участвует в выборе
	selected, err := SelectAccount(accounts, BuildSnapshots(accounts, usages))
	require.NoError(t, err)
	assert.Equal(t, "a", selected.Name)
}

func TestSelectAccountTieBreaksByOrder(t *testing.T) {
	accounts := []domain.StorageAccount{
		account("a", 1000, true),
		account("b", 1000, true),
	}
	usages := []domain.AccountUsage{
		{StorageAccount: "a", UsedBytes: 300},
		{StorageAccount: "b", UsedBytes: 300},
	}

	selected, err := SelectAccount(accounts, BuildSnapshots(accounts, usages))
	require.NoError(t, err)
	assert.Equal(t, "a", selected.Name)
}

func TestSelectAccountNoAccounts(t *testing.T) {
	_, err := SelectAccount(nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoStorageAccounts)
}

func TestSelectAccountNoActiveAccounts(t *testing.T) {
	accounts := []domain.StorageAccount{
		account("a", 1000, false),
		account("b", 1000, false),
	}

	_, err := SelectAccount(accounts, BuildSnapshots(accounts, nil))
	assert.ErrorIs(t, err, domain.ErrNoActiveAccounts)
}
