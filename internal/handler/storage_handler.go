package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"safarhub/internal/auth"
	"safarhub/internal/service"
)

// StorageHandler обслуживает диагностические запросы по аккаунтам хранилища
type StorageHandler struct {
	mediaService *service.MediaService
}

func NewStorageHandler(mediaService *service.MediaService) *StorageHandler {
	return &StorageHandler{mediaService: mediaService}
}

// GetAccountStats возвращает срез занятости каждого аккаунта
func (h *StorageHandler) GetAccountStats(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.VerifyToken(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.mediaService.AccountStats(r.Context())
	if err != nil {
		log.Printf("Failed to get account stats: %v", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ReloadAccounts перечитывает конфигурацию аккаунтов по запросу оператора
func (h *StorageHandler) ReloadAccounts(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.VerifyToken(r); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accounts := h.mediaService.ReloadAccounts(r.Context())
	log.Printf("[Registry] Перезагружено аккаунтов: %d", len(accounts))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"accounts": len(accounts)})
}
