package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/render"
)

// projectTypeTask / projectTypeDiary はビュー断片のプロジェクト種別ラベル。
const (
	projectTypeTask  = "task"
	projectTypeDiary = "diary"
)

// CurrentProjectFinder は選択中プロジェクトの参照インターフェース。
// 選択中プロジェクトが消えている場合は直近のプロジェクトへ付け替えてから返す。
type CurrentProjectFinder interface {
	Current(ctx context.Context, userID string) (*model.Project, error)
}

// ContentLister はプロジェクト内コンテンツの一覧取得インターフェース。
type ContentLister interface {
	ListForProject(ctx context.Context, projectID string, showDone bool) ([]*model.Content, error)
}

// DiaryOpener は日記コンテンツの取得インターフェース。存在しない場合は空で作成する。
type DiaryOpener interface {
	Open(ctx context.Context, userID, projectID string) (*model.DiaryContent, error)
}

// ViewHandler は画面断片を組み立てるHTTPハンドラー。
// タスク一覧と日記本文をHTMLにして返し、クライアント側は差し替えるだけにする。
type ViewHandler struct {
	projects CurrentProjectFinder
	contents ContentLister
	diary    DiaryOpener
	settings SettingsGetter
	renderer *render.Renderer
}

// NewViewHandler はViewHandlerを生成する。
func NewViewHandler(projects CurrentProjectFinder, contents ContentLister, diary DiaryOpener, settings SettingsGetter, renderer *render.Renderer) *ViewHandler {
	return &ViewHandler{
		projects: projects,
		contents: contents,
		diary:    diary,
		settings: settings,
		renderer: renderer,
	}
}

// viewResponse はビュー断片のAPIレスポンス。
type viewResponse struct {
	Content     string `json:"content"`
	ProjectType string `json:"project_type"`
}

// Full は選択中プロジェクトの全体断片を返す。
// タスクプロジェクトならタスク一覧、日記プロジェクトなら日記本文を返す。
// POST /api/view/full
func (h *ViewHandler) Full(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	setting, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	project, err := h.projects.Current(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// プロジェクト未選択時は空断片を返す
	if project == nil {
		writeJSON(w, http.StatusOK, viewResponse{Content: "", ProjectType: projectTypeTask})
		return
	}

	if project.Kind == model.ProjectKindDiary {
		diary, err := h.diary.Open(r.Context(), userID, project.ID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewResponse{
			Content:     h.renderer.Diary(diary),
			ProjectType: projectTypeDiary,
		})
		return
	}

	contents, err := h.contents.ListForProject(r.Context(), project.ID, setting.ShowDoneTask)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	html, err := h.renderer.TaskList(contents, setting.ShowDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{
		Content:     html,
		ProjectType: projectTypeTask,
	})
}

// GoToTask は選択中プロジェクトが消えている場合に直近のタスクプロジェクトへ戻す。
// POST /api/view/task
func (h *ViewHandler) GoToTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	// Currentは選択中プロジェクトが消えている場合、直近のプロジェクトへ付け替える
	project, err := h.projects.Current(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": project != nil})
}
