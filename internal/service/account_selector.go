package service

import (
	"math"

	"safarhub/internal/domain"
)

// softUsageThreshold — мягкий порог занятости, после которого аккаунт
// перестает быть предпочтительным
const softUsageThreshold = 90

// BuildSnapshots собирает срезы занятости по каждому сконфигурированному
// аккаунту. Аккаунт без единого файла получает нулевой агрегат.
func BuildSnapshots(accounts []domain.StorageAccount, usages []domain.AccountUsage) []domain.AccountUsageSnapshot {
	byName := make(map[string]domain.AccountUsage, len(usages))
	for _, u := range usages {
		byName[u.StorageAccount] = u
	}

	snapshots := make([]domain.AccountUsageSnapshot, 0, len(accounts))
	for _, acc := range accounts {
		usage := byName[acc.Name]

		var percent int64
		if acc.MaxCapacityBytes > 0 {
			percent = int64(math.Round(float64(usage.UsedBytes) / float64(acc.MaxCapacityBytes) * 100))
		}

		snapshots = append(snapshots, domain.AccountUsageSnapshot{
			AccountName:      acc.Name,
			UsedBytes:        usage.UsedBytes,
			MaxCapacityBytes: acc.MaxCapacityBytes,
			// Может быть отрицательным при превышении квоты — не ограничиваем
			AvailableBytes: acc.MaxCapacityBytes - usage.UsedBytes,
			FileCount:      usage.FileCount,
			Active:         acc.Active,
			UsagePercent:   percent,
		})
	}

	return snapshots
}

// SelectAccount выбирает аккаунт для новой загрузки: активный, ниже мягкого
// порога, с наибольшим свободным местом. Если все активные аккаунты выше
// порога, порог игнорируется — отказывать в загрузке хуже, чем превысить
// мягкую квоту. Равенство свободного места разрешается порядком списка.
func SelectAccount(accounts []domain.StorageAccount, snapshots []domain.AccountUsageSnapshot) (*domain.StorageAccount, error) {
	if len(accounts) == 0 {
		return nil, domain.ErrNoStorageAccounts
	}

	var best *domain.AccountUsageSnapshot
	for i := range snapshots {
		s := &snapshots[i]
		if !s.Active || s.UsagePercent >= softUsageThreshold {
			continue
		}
		if best == nil || s.AvailableBytes > best.AvailableBytes {
			best = s
		}
	}

	// Деградация: все активные аккаунты почти заполнены
	if best == nil {
		for i := range snapshots {
			s := &snapshots[i]
			if !s.Active {
				continue
			}
			if best == nil || s.AvailableBytes > best.AvailableBytes {
				best = s
			}
		}
	}

	if best == nil {
		return nil, domain.ErrNoActiveAccounts
	}

	for i := range accounts {
		if accounts[i].Name == best.AccountName {
			account := accounts[i]
			return &account, nil
		}
	}

	return nil, domain.ErrNoActiveAccounts
}
