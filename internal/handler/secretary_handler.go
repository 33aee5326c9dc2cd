package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
)

// SecretaryServiceInterface は秘書レポートハンドラーが必要とするサービスインターフェース。
type SecretaryServiceInterface interface {
	// Report は保存済みの秘書レポートをHTML断片として返す。
	Report(ctx context.Context, userID string) (string, error)
}

// SecretaryHandler は秘書レポートのHTTPハンドラー。
type SecretaryHandler struct {
	service SecretaryServiceInterface
}

// NewSecretaryHandler はSecretaryHandlerを生成する。
func NewSecretaryHandler(service SecretaryServiceInterface) *SecretaryHandler {
	return &SecretaryHandler{service: service}
}

// Report は秘書レポートの断片を返す。メール連携が未設定の場合は403を返す。
// POST /api/secretary
func (h *SecretaryHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	content, err := h.service.Report(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}
