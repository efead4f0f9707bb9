package domain

const gigabyte = 1024 * 1024 * 1024

// DefaultAccountQuotaBytes используется, когда квота аккаунта не задана явно (25GB)
const DefaultAccountQuotaBytes int64 = 25 * gigabyte

// StorageAccount представляет один аккаунт удаленного хранилища с фиксированной квотой.
// Список аккаунтов неизменен в течение жизни процесса, кроме флага Active,
// который оператор может переключить снаружи.
type StorageAccount struct {
	Name             string `json:"name"`
	CloudName        string `json:"cloud_name"`
	APIKey           string `json:"api_key"`
	APISecret        string `json:"api_secret"`
	MaxCapacityBytes int64  `json:"max_capacity_bytes"`
	Active           bool   `json:"active"`
}

// StorageAccountConfig — конфигурационная форма аккаунта (настройки админки
// или переменные окружения)
type StorageAccountConfig struct {
	Name         string `json:"name" mapstructure:"name"`
	CloudName    string `json:"cloudName" mapstructure:"cloudName"`
	APIKey       string `json:"apiKey" mapstructure:"apiKey"`
	APISecret    string `json:"apiSecret" mapstructure:"apiSecret"`
	MaxStorageGB int64  `json:"maxStorageGB" mapstructure:"maxStorageGB"`
	IsActive     *bool  `json:"isActive" mapstructure:"isActive"`
}

// ToAccount нормализует конфигурационную форму в StorageAccount
func (c StorageAccountConfig) ToAccount() StorageAccount {
	name := c.Name
	if name == "" {
		name = c.CloudName
	}

	quota := c.MaxStorageGB * gigabyte
	if quota <= 0 {
		quota = DefaultAccountQuotaBytes
	}

	// Аккаунт без явного флага считается активным
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}

	return StorageAccount{
		Name:             name,
		CloudName:        c.CloudName,
		APIKey:           c.APIKey,
		APISecret:        c.APISecret,
		MaxCapacityBytes: quota,
		Active:           active,
	}
}

// AccountUsage — агрегат по одному аккаунту из таблицы media_assets
type AccountUsage struct {
	StorageAccount string `db:"storage_account"`
	UsedBytes      int64  `db:"used_bytes"`
	FileCount      int64  `db:"file_count"`
}

// AccountUsageSnapshot — моментальный срез занятости аккаунта.
// Пересчитывается на каждый запрос выбора аккаунта, никогда не кэшируется.
type AccountUsageSnapshot struct {
	AccountName      string `json:"name"`
	UsedBytes        int64  `json:"used_bytes"`
	MaxCapacityBytes int64  `json:"max_capacity_bytes"`
	AvailableBytes   int64  `json:"available_bytes"`
	FileCount        int64  `json:"file_count"`
	Active           bool   `json:"active"`
	UsagePercent     int64  `json:"usage_percent"`
}
