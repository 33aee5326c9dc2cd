package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/render"
)

// ProjectServiceInterface はプロジェクトハンドラーが必要とするサービスインターフェース。
type ProjectServiceInterface interface {
	// Create は新しいプロジェクトを作成し、選択中プロジェクトに設定する。
	Create(ctx context.Context, userID string, kind model.ProjectKind, name string) (*model.Project, error)
	// ChangeCurrent は選択中プロジェクトを切り替える。
	ChangeCurrent(ctx context.Context, userID, projectID string) (*model.Project, error)
	// Rename は選択中プロジェクトの名前を変更する。
	Rename(ctx context.Context, userID, name string) (*model.Project, error)
	// ToggleArchive は選択中プロジェクトのアーカイブ状態を反転する。
	ToggleArchive(ctx context.Context, userID string) (*model.Project, error)
	// List はタスクプロジェクトの一覧を名前順で返す。
	List(ctx context.Context, userID string) ([]*model.Project, error)
	// ListDiary は日記プロジェクトの一覧を新しい順で返す。
	ListDiary(ctx context.Context, userID string) ([]*model.Project, error)
	// Recent は最近開いたタスクプロジェクトを返す。
	Recent(ctx context.Context, userID string) ([]*model.Project, error)
	// Current は選択中プロジェクトを返す。未選択の場合はnilを返す。
	Current(ctx context.Context, userID string) (*model.Project, error)
	// CurrentName は選択中プロジェクトの名前を返す。
	CurrentName(ctx context.Context, userID string) (string, error)
}

// ProjectHandler はプロジェクト管理のHTTPハンドラー。
type ProjectHandler struct {
	service  ProjectServiceInterface
	renderer *render.Renderer
}

// NewProjectHandler はProjectHandlerを生成する。
func NewProjectHandler(service ProjectServiceInterface, renderer *render.Renderer) *ProjectHandler {
	return &ProjectHandler{
		service:  service,
		renderer: renderer,
	}
}

// projectResponse はプロジェクト情報のAPIレスポンス。
type projectResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Current bool   `json:"current,omitempty"`
}

// projectListResponse はプロジェクト一覧のAPIレスポンス。
type projectListResponse struct {
	HTML    string            `json:"html"`
	Content []projectResponse `json:"content"`
}

// CreateTask はタスクプロジェクトを作成する。
// POST /api/projects
func (h *ProjectHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, model.ProjectKindTask)
}

// CreateDiary は日記プロジェクトを作成する。
// POST /api/projects/diary
func (h *ProjectHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, model.ProjectKindDiary)
}

func (h *ProjectHandler) create(w http.ResponseWriter, r *http.Request, kind model.ProjectKind) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	project, err := h.service.Create(r.Context(), userID, kind, req.Data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, projectResponse{
		ID:   project.ID,
		Name: project.Name,
	})
}

// Change は選択中プロジェクトを切り替える。
// POST /api/projects/change
func (h *ProjectHandler) Change(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	if _, err := h.service.ChangeCurrent(r.Context(), userID, req.Data); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Name は選択中プロジェクトの名前を返す。
// POST /api/projects/name
func (h *ProjectHandler) Name(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	name, err := h.service.CurrentName(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// Rename は選択中プロジェクトの名前を変更する。
// POST /api/projects/rename
func (h *ProjectHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	project, err := h.service.Rename(r.Context(), userID, req.Data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{
		ID:   project.ID,
		Name: project.Name,
	})
}

// Archive は選択中プロジェクトのアーカイブ状態を反転する。
// POST /api/projects/archive
func (h *ProjectHandler) Archive(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	project, err := h.service.ToggleArchive(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       project.ID,
		"archived": project.Archived,
	})
}

// List はタスクプロジェクトの一覧を返す。選択中プロジェクトにはcurrentフラグを付ける。
// POST /api/projects/list
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	projects, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	current, err := h.service.Current(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	currentID := ""
	if current != nil {
		currentID = current.ID
	}

	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectResponse{
			ID:      p.ID,
			Name:    p.Name,
			Current: p.ID == currentID,
		})
	}

	writeJSON(w, http.StatusOK, projectListResponse{
		HTML:    h.renderer.ProjectList(projects, false),
		Content: items,
	})
}

// Recent は最近開いたタスクプロジェクトの一覧を返す。
// POST /api/projects/recent
func (h *ProjectHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	projects, err := h.service.Recent(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, projectResponse{ID: p.ID, Name: p.Name})
	}

	writeJSON(w, http.StatusOK, projectListResponse{
		HTML:    h.renderer.ProjectList(projects, false),
		Content: items,
	})
}
