package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"safarhub/internal/auth"
	"safarhub/internal/domain"
	"safarhub/internal/service"
)

const maxUploadSize = 64 * 1024 * 1024 // 64MB лимит на запрос

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// DeleteResponse — ответ на удаление файла
type DeleteResponse struct {
	Success bool `json:"success"`
}

// UploadMedia обрабатывает загрузку одного файла
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		log.Printf("Authorization failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	// Тип берем заявленный клиентом
	contentType := header.Header.Get("Content-Type")

	asset, err := h.mediaService.Upload(r.Context(), domain.MediaUpload{
		Data:     data,
		MIMEType: contentType,
		FileName: header.Filename,
		OwnerID:  userID,
		Category: r.FormValue("category"),
		AltText:  r.FormValue("alt_text"),
		Title:    r.FormValue("title"),
		Folder:   r.FormValue("folder"),
	})
	if err != nil {
		log.Printf("Failed to upload media: %v", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(asset)
}

// ListMedia возвращает файлы пользователя с фильтрами и пагинацией
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter := domain.MediaFilter{
		ResourceType: r.URL.Query().Get("resource_type"),
		Category:     r.URL.Query().Get("category"),
		Limit:        queryInt(r, "limit"),
		Offset:       queryInt(r, "offset"),
	}

	assets, err := h.mediaService.ListByOwner(r.Context(), userID, filter)
	if err != nil {
		log.Printf("Failed to list media: %v", err)
		http.Error(w, "Failed to list media", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}

// GetMedia возвращает один файл по идентификатору
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.VerifyToken(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	asset, err := h.mediaService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// UpdateMedia обновляет метаданные файла
func (h *MediaHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	var upd domain.MediaUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	asset, err := h.mediaService.Update(r.Context(), id, userID, upd)
	if err != nil {
		log.Printf("Failed to update media %s: %v", id, err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// DeleteMedia удаляет файл владельца
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid media id", http.StatusBadRequest)
		return
	}

	if err := h.mediaService.Delete(r.Context(), id, userID); err != nil {
		log.Printf("Failed to delete media %s: %v", id, err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DeleteResponse{Success: true})
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// writeServiceError переводит типизированные ошибки сервиса в HTTP-статусы
func writeServiceError(w http.ResponseWriter, err error) {
	var budgetErr *domain.BudgetExceededError

	switch {
	case errors.Is(err, domain.ErrMediaNotFound):
		http.Error(w, "Media not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrAccessDenied):
		http.Error(w, "Access denied", http.StatusForbidden)
	case errors.As(err, &budgetErr):
		http.Error(w, budgetErr.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, domain.ErrNoStorageAccounts), errors.Is(err, domain.ErrNoActiveAccounts):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrRemoteTransfer):
		http.Error(w, "Remote storage rejected the transfer", http.StatusBadGateway)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
