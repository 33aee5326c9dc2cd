package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/render"
)

// --- モック定義 ---

// mockProjectService はProjectServiceInterfaceのモック実装。
type mockProjectService struct {
	createFn        func(ctx context.Context, userID string, kind model.ProjectKind, name string) (*model.Project, error)
	changeCurrentFn func(ctx context.Context, userID, projectID string) (*model.Project, error)
	renameFn        func(ctx context.Context, userID, name string) (*model.Project, error)
	toggleArchiveFn func(ctx context.Context, userID string) (*model.Project, error)
	listFn          func(ctx context.Context, userID string) ([]*model.Project, error)
	listDiaryFn     func(ctx context.Context, userID string) ([]*model.Project, error)
	recentFn        func(ctx context.Context, userID string) ([]*model.Project, error)
	currentFn       func(ctx context.Context, userID string) (*model.Project, error)
	currentNameFn   func(ctx context.Context, userID string) (string, error)
}

func (m *mockProjectService) Create(ctx context.Context, userID string, kind model.ProjectKind, name string) (*model.Project, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, kind, name)
	}
	return &model.Project{ID: "project-1", Name: name}, nil
}

func (m *mockProjectService) ChangeCurrent(ctx context.Context, userID, projectID string) (*model.Project, error) {
	if m.changeCurrentFn != nil {
		return m.changeCurrentFn(ctx, userID, projectID)
	}
	return nil, nil
}

func (m *mockProjectService) Rename(ctx context.Context, userID, name string) (*model.Project, error) {
	if m.renameFn != nil {
		return m.renameFn(ctx, userID, name)
	}
	return &model.Project{ID: "project-1", Name: name}, nil
}

func (m *mockProjectService) ToggleArchive(ctx context.Context, userID string) (*model.Project, error) {
	if m.toggleArchiveFn != nil {
		return m.toggleArchiveFn(ctx, userID)
	}
	return &model.Project{ID: "project-1"}, nil
}

func (m *mockProjectService) List(ctx context.Context, userID string) ([]*model.Project, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectService) ListDiary(ctx context.Context, userID string) ([]*model.Project, error) {
	if m.listDiaryFn != nil {
		return m.listDiaryFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectService) Recent(ctx context.Context, userID string) ([]*model.Project, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectService) Current(ctx context.Context, userID string) (*model.Project, error) {
	if m.currentFn != nil {
		return m.currentFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectService) CurrentName(ctx context.Context, userID string) (string, error) {
	if m.currentNameFn != nil {
		return m.currentNameFn(ctx, userID)
	}
	return "-", nil
}

// --- POST /api/projects テスト ---

func TestProjectHandler_CreateTask_Success(t *testing.T) {
	svc := &mockProjectService{
		createFn: func(ctx context.Context, userID string, kind model.ProjectKind, name string) (*model.Project, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			if kind != model.ProjectKindTask {
				t.Errorf("kind = %q, want %q", kind, model.ProjectKindTask)
			}
			if name != "買い物リスト" {
				t.Errorf("name = %q, want %q", name, "買い物リスト")
			}
			return &model.Project{ID: "project-1", Name: name}, nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects", dataModel{Data: "買い物リスト"}), "user-1")
	w := httptest.NewRecorder()

	h.CreateTask(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	body := decodeBody[projectResponse](t, w)
	if body.ID != "project-1" {
		t.Errorf("id = %q, want %q", body.ID, "project-1")
	}
	if body.Name != "買い物リスト" {
		t.Errorf("name = %q, want %q", body.Name, "買い物リスト")
	}
}

func TestProjectHandler_CreateDiary_PassesDiaryKind(t *testing.T) {
	var gotKind model.ProjectKind
	svc := &mockProjectService{
		createFn: func(ctx context.Context, userID string, kind model.ProjectKind, name string) (*model.Project, error) {
			gotKind = kind
			return &model.Project{ID: "diary-1", Name: "🦊26.08.29"}, nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/diary", dataModel{}), "user-1")
	w := httptest.NewRecorder()

	h.CreateDiary(w, req)

	if gotKind != model.ProjectKindDiary {
		t.Errorf("kind = %q, want %q", gotKind, model.ProjectKindDiary)
	}
}

func TestProjectHandler_Create_NoUserID_ReturnsUnauthorized(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{}, render.NewRenderer())

	// ユーザーIDを注入しない
	req := postJSON(t, "/api/projects", dataModel{})
	w := httptest.NewRecorder()

	h.CreateTask(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestProjectHandler_Create_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	h := NewProjectHandler(&mockProjectService{}, render.NewRenderer())

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader("{invalid"))
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()

	h.CreateTask(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- POST /api/projects/change テスト ---

func TestProjectHandler_Change_Success(t *testing.T) {
	var gotProjectID string
	svc := &mockProjectService{
		changeCurrentFn: func(ctx context.Context, userID, projectID string) (*model.Project, error) {
			gotProjectID = projectID
			return &model.Project{ID: projectID}, nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/change", dataModel{Data: "project-2"}), "user-1")
	w := httptest.NewRecorder()

	h.Change(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotProjectID != "project-2" {
		t.Errorf("projectID = %q, want %q", gotProjectID, "project-2")
	}
}

func TestProjectHandler_Change_NotFound(t *testing.T) {
	svc := &mockProjectService{
		changeCurrentFn: func(ctx context.Context, userID, projectID string) (*model.Project, error) {
			return nil, model.NewProjectNotFoundError(projectID)
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/change", dataModel{Data: "missing"}), "user-1")
	w := httptest.NewRecorder()

	h.Change(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	body := decodeBody[apiErrorResponse](t, w)
	if body.Code != model.ErrCodeProjectNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeProjectNotFound)
	}
}

// --- POST /api/projects/name テスト ---

func TestProjectHandler_Name_ReturnsCurrentName(t *testing.T) {
	svc := &mockProjectService{
		currentNameFn: func(ctx context.Context, userID string) (string, error) {
			return "🛒買いたいもの", nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/name", dataModel{}), "user-1")
	w := httptest.NewRecorder()

	h.Name(w, req)

	body := decodeBody[map[string]string](t, w)
	if body["name"] != "🛒買いたいもの" {
		t.Errorf("name = %q, want %q", body["name"], "🛒買いたいもの")
	}
}

// --- POST /api/projects/rename テスト ---

func TestProjectHandler_Rename_NoCurrentProject_ReturnsConflict(t *testing.T) {
	svc := &mockProjectService{
		renameFn: func(ctx context.Context, userID, name string) (*model.Project, error) {
			return nil, model.NewNoCurrentProjectError()
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/rename", dataModel{Data: "新しい名前"}), "user-1")
	w := httptest.NewRecorder()

	h.Rename(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// --- POST /api/projects/archive テスト ---

func TestProjectHandler_Archive_ReturnsArchivedFlag(t *testing.T) {
	now := time.Now()
	svc := &mockProjectService{
		toggleArchiveFn: func(ctx context.Context, userID string) (*model.Project, error) {
			return &model.Project{ID: "project-1", Archived: true, ArchivedAt: &now}, nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/archive", dataModel{}), "user-1")
	w := httptest.NewRecorder()

	h.Archive(w, req)

	body := decodeBody[map[string]any](t, w)
	if body["archived"] != true {
		t.Errorf("archived = %v, want true", body["archived"])
	}
}

// --- POST /api/projects/list テスト ---

func TestProjectHandler_List_MarksCurrentProject(t *testing.T) {
	svc := &mockProjectService{
		listFn: func(ctx context.Context, userID string) ([]*model.Project, error) {
			return []*model.Project{
				{ID: "project-1", Name: "あ"},
				{ID: "project-2", Name: "い"},
			}, nil
		},
		currentFn: func(ctx context.Context, userID string) (*model.Project, error) {
			return &model.Project{ID: "project-2"}, nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/list", dataModel{}), "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	body := decodeBody[projectListResponse](t, w)
	if len(body.Content) != 2 {
		t.Fatalf("content length = %d, want 2", len(body.Content))
	}
	if body.Content[0].Current {
		t.Error("project-1 should not be current")
	}
	if !body.Content[1].Current {
		t.Error("project-2 should be current")
	}
	if !strings.Contains(body.HTML, "project-1") {
		t.Error("html should contain project-1")
	}
}

// --- POST /api/projects/recent テスト ---

func TestProjectHandler_Recent_ReturnsProjects(t *testing.T) {
	svc := &mockProjectService{
		recentFn: func(ctx context.Context, userID string) ([]*model.Project, error) {
			return []*model.Project{{ID: "project-9", Name: "直近"}}, nil
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/recent", dataModel{}), "user-1")
	w := httptest.NewRecorder()

	h.Recent(w, req)

	body := decodeBody[projectListResponse](t, w)
	if len(body.Content) != 1 || body.Content[0].ID != "project-9" {
		t.Errorf("content = %+v, want project-9", body.Content)
	}
}

func TestProjectHandler_Recent_InternalError(t *testing.T) {
	svc := &mockProjectService{
		recentFn: func(ctx context.Context, userID string) ([]*model.Project, error) {
			return nil, errors.New("query failed")
		},
	}

	h := NewProjectHandler(svc, render.NewRenderer())

	req := withUserID(postJSON(t, "/api/projects/recent", dataModel{}), "user-1")
	w := httptest.NewRecorder()

	h.Recent(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
