// storage.go
package cloudinary

import (
	"context"
	"strings"

	"safarhub/internal/domain"
)

// UploadRequest описывает одну передачу файла в удаленное хранилище
type UploadRequest struct {
	Data         []byte
	Folder       string
	PublicID     string
	ResourceType string
}

// UploadResult — ответ хранилища. Размер и габариты здесь имеют приоритет
// над локально вычисленными значениями.
type UploadResult struct {
	URL      string
	PublicID string
	Bytes    int64
	Width    int
	Height   int
}

// Storage определяет интерфейс для работы с удаленным хранилищем медиафайлов
type Storage interface {
	Upload(ctx context.Context, account domain.StorageAccount, req UploadRequest) (*UploadResult, error)
	Delete(ctx context.Context, account domain.StorageAccount, publicID, resourceType string) error
}

const thumbnailTransform = "c_fill,h_300,w_300"

// ThumbnailURL строит URL превью 300x300 через URL-трансформацию уже
// загруженного файла, без второй бинарной загрузки
func ThumbnailURL(deliveryURL string) string {
	if !strings.Contains(deliveryURL, "/upload/") {
		return deliveryURL
	}
	return strings.Replace(deliveryURL, "/upload/", "/upload/"+thumbnailTransform+"/", 1)
}
