package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"safarhub/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type MediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create вставляет запись о загруженном файле. Вызывается ровно один раз
// после успешной передачи в удаленное хранилище.
func (r *MediaRepository) Create(ctx context.Context, asset *domain.MediaAsset) error {
	query := `
        INSERT INTO media_assets (
            id, url, thumbnail_url, public_id, resource_type,
            category, alt_text, title, file_name, size_bytes,
            mime_type, width, height, storage_account, owner_id
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		asset.ID,
		asset.URL,
		asset.ThumbnailURL,
		asset.PublicID,
		asset.ResourceType,
		asset.Category,
		asset.AltText,
		asset.Title,
		asset.FileName,
		asset.SizeBytes,
		asset.MIMEType,
		asset.Width,
		asset.Height,
		asset.StorageAccount,
		asset.OwnerID,
	).Scan(&asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create media asset: %w", err)
	}

	return nil
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaAsset, error) {
	var asset domain.MediaAsset
	query := `SELECT * FROM media_assets WHERE id = $1`

	err := r.db.GetContext(ctx, &asset, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media asset: %w", err)
	}

	return &asset, nil
}

// GetByOwner возвращает файлы владельца с фильтрами и пагинацией
func (r *MediaRepository) GetByOwner(ctx context.Context, ownerID string, filter domain.MediaFilter) ([]domain.MediaAsset, error) {
	query := `SELECT * FROM media_assets WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		query += ` AND resource_type = $` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	assets := make([]domain.MediaAsset, 0)
	if err := r.db.SelectContext(ctx, &assets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list media assets: %w", err)
	}

	return assets, nil
}

// UpdateMeta обновляет только изменяемые поля метаданных
func (r *MediaRepository) UpdateMeta(ctx context.Context, id uuid.UUID, upd domain.MediaUpdate) (*domain.MediaAsset, error) {
	query := `
        UPDATE media_assets
        SET category = COALESCE($2, category),
            alt_text = COALESCE($3, alt_text),
            title = COALESCE($4, title)
        WHERE id = $1
        RETURNING *`

	var asset domain.MediaAsset
	err := r.db.GetContext(ctx, &asset, query, id, upd.Category, upd.AltText, upd.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update media asset: %w", err)
	}

	return &asset, nil
}

func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrMediaNotFound
	}

	return nil
}

// UsageByAccount считает занятые байты и количество файлов по каждому аккаунту.
// Запрос только читающий; расхождение с параллельными загрузками допустимо.
func (r *MediaRepository) UsageByAccount(ctx context.Context) ([]domain.AccountUsage, error) {
	var usages []domain.AccountUsage
	query := `
        SELECT storage_account,
               COALESCE(SUM(size_bytes), 0) AS used_bytes,
               COUNT(*) AS file_count
        FROM media_assets
        GROUP BY storage_account`

	if err := r.db.SelectContext(ctx, &usages, query); err != nil {
		return nil, fmt.Errorf("failed to get usage by account: %w", err)
	}

	return usages, nil
}
