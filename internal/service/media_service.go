package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"safarhub/internal/compress"
	"safarhub/internal/domain"
	"safarhub/internal/service/cloudinary"
)

const (
	defaultFolder   = "safar_media"
	defaultCategory = "general"
)

var errInvalidUpload = errors.New("invalid upload request")

// MediaRepository определяет хранилище метаданных медиафайлов
type MediaRepository interface {
	Create(ctx context.Context, asset *domain.MediaAsset) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaAsset, error)
	GetByOwner(ctx context.Context, ownerID string, filter domain.MediaFilter) ([]domain.MediaAsset, error)
	UpdateMeta(ctx context.Context, id uuid.UUID, upd domain.MediaUpdate) (*domain.MediaAsset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UsageByAccount(ctx context.Context) ([]domain.AccountUsage, error)
}

// MediaService оркестрирует загрузку медиафайлов: классификация, сжатие,
// выбор аккаунта, передача в хранилище, запись метаданных
type MediaService struct {
	mediaRepo MediaRepository
	registry  *AccountRegistry
	remote    cloudinary.Storage
	budget    int
}

func NewMediaService(mediaRepo MediaRepository, registry *AccountRegistry, remote cloudinary.Storage) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		registry:  registry,
		remote:    remote,
		budget:    compress.DefaultBudget,
	}
}

// Upload выполняет одну загрузку от начала до конца. Запись в БД происходит
// строго после успешной передачи в хранилище.
func (s *MediaService) Upload(ctx context.Context, up domain.MediaUpload) (*domain.MediaAsset, error) {
	if len(up.Data) == 0 || up.OwnerID == "" || up.FileName == "" {
		return nil, fmt.Errorf("%w: missing required parameters", errInvalidUpload)
	}

	mimeType := up.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	resourceType := ClassifyResource(mimeType)

	// Сжимаем только изображения; остальные типы проходят без изменений
	data := up.Data
	var localWidth, localHeight int
	if resourceType == domain.ResourceImage {
		result, err := compress.Image(data, s.budget)
		if err != nil {
			return nil, err
		}
		if result.Compressed {
			log.Printf("[Upload] Изображение %s сжато: %d -> %d байт", up.FileName, len(data), len(result.Data))
		}
		data = result.Data
		localWidth = result.Width
		localHeight = result.Height
	}

	account, err := s.selectAccount(ctx)
	if err != nil {
		return nil, err
	}

	publicID := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeName(up.FileName))

	result, err := s.remote.Upload(ctx, *account, cloudinary.UploadRequest{
		Data:         data,
		Folder:       buildFolder(up.Folder, up.Category),
		PublicID:     publicID,
		ResourceType: remoteResourceType(resourceType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteTransfer, err)
	}

	asset := &domain.MediaAsset{
		ID:             uuid.New(),
		URL:            result.URL,
		PublicID:       result.PublicID,
		ResourceType:   resourceType,
		FileName:       filepath.Base(up.FileName),
		SizeBytes:      int64(len(data)),
		MIMEType:       mimeType,
		StorageAccount: account.Name,
		OwnerID:        up.OwnerID,
	}
	if up.Category != "" {
		asset.Category = &up.Category
	}
	if up.AltText != "" {
		asset.AltText = &up.AltText
	}
	if up.Title != "" {
		asset.Title = &up.Title
	}

	// Ответ хранилища имеет приоритет над локально вычисленными значениями:
	// бэкенд может применить собственную нормализацию
	if result.Bytes > 0 {
		asset.SizeBytes = result.Bytes
	}
	width, height := localWidth, localHeight
	if result.Width > 0 {
		width = result.Width
	}
	if result.Height > 0 {
		height = result.Height
	}
	if width > 0 {
		asset.Width = &width
	}
	if height > 0 {
		asset.Height = &height
	}

	// Превью строится URL-трансформацией уже загруженного файла
	if resourceType == domain.ResourceImage {
		thumb := cloudinary.ThumbnailURL(result.URL)
		asset.ThumbnailURL = &thumb
	}

	if err := s.mediaRepo.Create(ctx, asset); err != nil {
		// При ошибке БД убираем файл из хранилища
		if delErr := s.remote.Delete(ctx, *account, result.PublicID, remoteResourceType(resourceType)); delErr != nil {
			log.Printf("[Upload] Не удалось удалить файл из хранилища после ошибки БД: %v", delErr)
		}
		return nil, fmt.Errorf("failed to save media record: %w", err)
	}

	return asset, nil
}

// selectAccount выбирает аккаунт по свежему срезу занятости
func (s *MediaService) selectAccount(ctx context.Context) (*domain.StorageAccount, error) {
	accounts, err := s.registry.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	usages, err := s.mediaRepo.UsageByAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute account usage: %w", err)
	}

	return SelectAccount(accounts, BuildSnapshots(accounts, usages))
}

// AccountStats возвращает срез занятости каждого аккаунта
func (s *MediaService) AccountStats(ctx context.Context) ([]domain.AccountUsageSnapshot, error) {
	accounts, err := s.registry.GetAccounts(ctx)
	if err != nil {
		return nil, err
	}

	usages, err := s.mediaRepo.UsageByAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute account usage: %w", err)
	}

	return BuildSnapshots(accounts, usages), nil
}

// ReloadAccounts перечитывает конфигурацию аккаунтов
func (s *MediaService) ReloadAccounts(ctx context.Context) []domain.StorageAccount {
	return s.registry.Load(ctx)
}

func (s *MediaService) Get(ctx context.Context, id uuid.UUID) (*domain.MediaAsset, error) {
	return s.mediaRepo.GetByID(ctx, id)
}

func (s *MediaService) ListByOwner(ctx context.Context, ownerID string, filter domain.MediaFilter) ([]domain.MediaAsset, error) {
	return s.mediaRepo.GetByOwner(ctx, ownerID, filter)
}

// Update изменяет метаданные файла. Разрешено только владельцу.
func (s *MediaService) Update(ctx context.Context, id uuid.UUID, ownerID string, upd domain.MediaUpdate) (*domain.MediaAsset, error) {
	asset, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.OwnerID != ownerID {
		return nil, domain.ErrAccessDenied
	}

	return s.mediaRepo.UpdateMeta(ctx, id, upd)
}

// Delete удаляет файл в две фазы: сначала попытка удаления в хранилище,
// затем локальная запись. Неудача удаленной фазы логируется и не прерывает
// операцию — осиротевший файл в хранилище меньшая проблема, чем неудаляемая
// локальная запись.
func (s *MediaService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	asset, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if asset.OwnerID != ownerID {
		return domain.ErrAccessDenied
	}

	if account, ok := s.registry.FindAccount(ctx, asset.StorageAccount); ok {
		if err := s.remote.Delete(ctx, account, asset.PublicID, remoteResourceType(asset.ResourceType)); err != nil {
			log.Printf("[Media] Не удалось удалить %s из аккаунта %s: %v", asset.PublicID, asset.StorageAccount, err)
		}
	} else {
		log.Printf("[Media] Аккаунт %s больше не сконфигурирован, пропускаем удаление в хранилище", asset.StorageAccount)
	}

	return s.mediaRepo.Delete(ctx, id)
}

// ClassifyResource определяет тип ресурса по заявленному MIME-типу
func ClassifyResource(mimeType string) domain.ResourceType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return domain.ResourceImage
	case strings.HasPrefix(mimeType, "video/"):
		return domain.ResourceVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return domain.ResourceAudio
	default:
		return domain.ResourceDocument
	}
}

// remoteResourceType переводит тип ресурса в таксономию хранилища
func remoteResourceType(rt domain.ResourceType) string {
	switch rt {
	case domain.ResourceImage:
		return "image"
	case domain.ResourceVideo, domain.ResourceAudio:
		return "video"
	default:
		return "raw"
	}
}

func buildFolder(folder, category string) string {
	if folder == "" {
		folder = defaultFolder
	}
	if category == "" {
		category = defaultCategory
	}
	return folder + "/" + category
}

// sanitizeName приводит имя файла к безопасному виду для ключа в хранилище
func sanitizeName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, base)

	if cleaned == "" {
		cleaned = "file"
	}
	return cleaned
}
