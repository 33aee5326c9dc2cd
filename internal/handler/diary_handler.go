package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/render"
)

// DiaryServiceInterface は日記ハンドラーが必要とするサービスインターフェース。
type DiaryServiceInterface interface {
	// SaveBody は選択中の日記プロジェクトの本文を保存し、要約を更新する。
	SaveBody(ctx context.Context, userID, body string) (*model.DiaryContent, error)
}

// DiaryProjectLister は日記プロジェクトの一覧取得インターフェース。
type DiaryProjectLister interface {
	ListDiary(ctx context.Context, userID string) ([]*model.Project, error)
}

// DiaryHandler は日記のHTTPハンドラー。
type DiaryHandler struct {
	service  DiaryServiceInterface
	projects DiaryProjectLister
	renderer *render.Renderer
}

// NewDiaryHandler はDiaryHandlerを生成する。
func NewDiaryHandler(service DiaryServiceInterface, projects DiaryProjectLister, renderer *render.Renderer) *DiaryHandler {
	return &DiaryHandler{
		service:  service,
		projects: projects,
		renderer: renderer,
	}
}

// Save は日記本文を保存する。
// POST /api/diary
func (h *DiaryHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	diary, err := h.service.SaveBody(r.Context(), userID, req.Data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"summary": diary.Summary,
	})
}

// List は日記プロジェクトの一覧を新しい順で返す。
// POST /api/diary/list
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	projects, err := h.projects.ListDiary(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectResponse{ID: p.ID, Name: p.Name})
	}

	writeJSON(w, http.StatusOK, projectListResponse{
		HTML:    h.renderer.ProjectList(projects, true),
		Content: items,
	})
}
