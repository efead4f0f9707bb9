package auth

import (
	"fmt"
	"net/http"
)

// Проверку токена выполняет вышестоящий шлюз; сюда личность пользователя
// приходит в заголовке X-User-ID.
const userHeader = "X-User-ID"

// VerifyToken извлекает идентификатор пользователя из запроса
func VerifyToken(r *http.Request) (string, error) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		return "", fmt.Errorf("no user identity in request")
	}

	return userID, nil
}
