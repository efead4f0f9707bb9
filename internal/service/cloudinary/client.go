package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"safarhub/internal/domain"
)

const uploadTimeout = 10 * time.Minute

// Client предоставляет методы для работы с хранилищем Cloudinary.
// Экземпляры SDK создаются по одному на аккаунт и переиспользуются.
type Client struct {
	mu   sync.Mutex
	clds map[string]*cloudinary.Cloudinary
}

func NewClient() *Client {
	return &Client{
		clds: make(map[string]*cloudinary.Cloudinary),
	}
}

// forAccount возвращает SDK-клиент, настроенный на учетные данные аккаунта
func (c *Client) forAccount(account domain.StorageAccount) (*cloudinary.Cloudinary, error) {
	if account.CloudName == "" || account.APIKey == "" || account.APISecret == "" {
		return nil, fmt.Errorf("account %s is missing credentials", account.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cld, ok := c.clds[account.Name]; ok {
		return cld, nil
	}

	cld, err := cloudinary.NewFromParams(account.CloudName, account.APIKey, account.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client for account %s: %w", account.Name, err)
	}

	c.clds[account.Name] = cld
	return cld, nil
}

// Upload передает файл в хранилище указанного аккаунта
func (c *Client) Upload(ctx context.Context, account domain.StorageAccount, req UploadRequest) (*UploadResult, error) {
	if req.PublicID == "" || len(req.Data) == 0 {
		return nil, fmt.Errorf("public id and data are required")
	}

	cld, err := c.forAccount(account)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	result, err := cld.Upload.Upload(ctx, bytes.NewReader(req.Data), uploader.UploadParams{
		PublicID:     req.PublicID,
		Folder:       req.Folder,
		ResourceType: req.ResourceType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to account %s: %w", account.Name, err)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}

	return &UploadResult{
		URL:      url,
		PublicID: result.PublicID,
		Bytes:    int64(result.Bytes),
		Width:    result.Width,
		Height:   result.Height,
	}, nil
}

// Delete удаляет файл из хранилища. Отсутствующий файл считается
// успешно удаленным.
func (c *Client) Delete(ctx context.Context, account domain.StorageAccount, publicID, resourceType string) error {
	if publicID == "" {
		return fmt.Errorf("public id is required")
	}

	cld, err := c.forAccount(account)
	if err != nil {
		return err
	}

	result, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from account %s: %w", publicID, account.Name, err)
	}

	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("unexpected destroy result for %s: %s", publicID, result.Result)
	}

	return nil
}
