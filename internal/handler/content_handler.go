package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/render"
)

// ContentServiceInterface はコンテンツハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	// Write は選択中プロジェクトに新しいタスク行を追加する。
	Write(ctx context.Context, userID, body string, depth int) (*model.Content, error)
	// ToggleDone はタスクの完了状態を反転する。対象が存在しない場合はfalseを返す。
	ToggleDone(ctx context.Context, userID, contentID string) (bool, error)
	// Count は選択中プロジェクトの完了数/総数を返す。
	Count(ctx context.Context, userID string) (string, error)
}

// SettingsGetter はユーザー設定の参照インターフェース。
type SettingsGetter interface {
	Get(ctx context.Context, userID string) (*model.UserSetting, error)
}

// ContentHandler はタスクコンテンツのHTTPハンドラー。
type ContentHandler struct {
	service  ContentServiceInterface
	settings SettingsGetter
	renderer *render.Renderer
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(service ContentServiceInterface, settings SettingsGetter, renderer *render.Renderer) *ContentHandler {
	return &ContentHandler{
		service:  service,
		settings: settings,
		renderer: renderer,
	}
}

// Write はタスク行を追加し、描画済みHTML断片を返す。
// POST /api/contents
func (h *ContentHandler) Write(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	content, err := h.service.Write(r.Context(), userID, req.Data, req.Depth)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	setting, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	html, err := h.renderer.TaskRow(content, setting.ShowDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   content.ID,
		"html": html,
	})
}

// ToggleDone はタスクの完了状態を反転する。
// POST /api/contents/done
func (h *ContentHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	done, err := h.service.ToggleDone(r.Context(), userID, req.Data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"done": done})
}

// Count は選択中プロジェクトの完了数/総数を返す。
// POST /api/contents/count
func (h *ContentHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	count, err := h.service.Count(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"count": count})
}
