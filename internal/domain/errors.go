package domain

import (
	"errors"
	"fmt"
)

// Ошибки конфигурации и доступа. Все они терминальны для текущего запроса.
var (
	ErrNoStorageAccounts = errors.New("no storage accounts available")
	ErrNoActiveAccounts  = errors.New("no active storage accounts")
	ErrMediaNotFound     = errors.New("media asset not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrRemoteTransfer    = errors.New("remote transfer failed")
	ErrSettingNotFound   = errors.New("setting not found")
)

// BudgetExceededError возвращается, когда изображение не удалось уложить
// в байтовый бюджет даже после страховочного прохода
type BudgetExceededError struct {
	OriginalSize int64
	Budget       int64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("image of %d bytes could not be compressed below budget of %d bytes", e.OriginalSize, e.Budget)
}
