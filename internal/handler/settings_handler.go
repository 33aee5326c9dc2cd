package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/model"
)

// SettingsServiceInterface は設定ハンドラーが必要とするサービスインターフェース。
type SettingsServiceInterface interface {
	Get(ctx context.Context, userID string) (*model.UserSetting, error)
	Save(ctx context.Context, setting *model.UserSetting) error
}

// SettingsHandler はユーザー設定のHTTPハンドラー。
type SettingsHandler struct {
	service SettingsServiceInterface
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(service SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// ToggleShowDate はタスク日付表示の設定を反転する。
// POST /api/settings/show-date
func (h *SettingsHandler) ToggleShowDate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	setting, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setting.ShowDate = !setting.ShowDate
	if err := h.service.Save(r.Context(), setting); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"show_date": setting.ShowDate})
}

// ToggleShowDone は完了済みタスク表示の設定を反転する。
// POST /api/settings/show-done
func (h *SettingsHandler) ToggleShowDone(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	setting, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setting.ShowDoneTask = !setting.ShowDoneTask
	if err := h.service.Save(r.Context(), setting); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"show_done": setting.ShowDoneTask})
}
