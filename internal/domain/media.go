package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType определяет обработку загружаемого файла
type ResourceType string

const (
	ResourceImage    ResourceType = "image"
	ResourceVideo    ResourceType = "video"
	ResourceAudio    ResourceType = "audio"
	ResourceDocument ResourceType = "document"
)

type MediaAsset struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	URL            string       `json:"url" db:"url"`
	ThumbnailURL   *string      `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	PublicID       string       `json:"public_id" db:"public_id"`
	ResourceType   ResourceType `json:"resource_type" db:"resource_type"`
	Category       *string      `json:"category,omitempty" db:"category"`
	AltText        *string      `json:"alt_text,omitempty" db:"alt_text"`
	Title          *string      `json:"title,omitempty" db:"title"`
	FileName       string       `json:"file_name" db:"file_name"`
	SizeBytes      int64        `json:"size_bytes" db:"size_bytes"`
	MIMEType       string       `json:"mime_type" db:"mime_type"`
	Width          *int         `json:"width,omitempty" db:"width"`
	Height         *int         `json:"height,omitempty" db:"height"`
	StorageAccount string       `json:"storage_account" db:"storage_account"`
	OwnerID        string       `json:"owner_id" db:"owner_id"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// MediaUpload представляет входные данные загрузки
type MediaUpload struct {
	Data     []byte
	MIMEType string
	FileName string
	OwnerID  string
	Category string
	AltText  string
	Title    string
	Folder   string
}

// MediaUpdate содержит изменяемые владельцем поля метаданных.
// nil означает "поле не трогаем".
type MediaUpdate struct {
	Category *string `json:"category"`
	AltText  *string `json:"alt_text"`
	Title    *string `json:"title"`
}

// MediaFilter задает фильтры и пагинацию для выборки по владельцу
type MediaFilter struct {
	ResourceType string
	Category     string
	Limit        int
	Offset       int
}
