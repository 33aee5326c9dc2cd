package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/bedrock/internal/model"
)

type mockContentRepo struct {
	findByIDFn         func(ctx context.Context, id string) (*model.Content, error)
	createFn           func(ctx context.Context, content *model.Content) error
	updateFn           func(ctx context.Context, content *model.Content) error
	listByProjectIDFn  func(ctx context.Context, projectID string) ([]*model.Content, error)
	listOpenByUserIDFn func(ctx context.Context, userID string) ([]*model.Content, error)
	countByProjectIDFn func(ctx context.Context, projectID string) (int, int, error)
}

func (m *mockContentRepo) FindByID(ctx context.Context, id string) (*model.Content, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockContentRepo) Create(ctx context.Context, content *model.Content) error {
	return m.createFn(ctx, content)
}

func (m *mockContentRepo) Update(ctx context.Context, content *model.Content) error {
	return m.updateFn(ctx, content)
}

func (m *mockContentRepo) ListByProjectID(ctx context.Context, projectID string) ([]*model.Content, error) {
	return m.listByProjectIDFn(ctx, projectID)
}

func (m *mockContentRepo) ListOpenByUserID(ctx context.Context, userID string) ([]*model.Content, error) {
	return m.listOpenByUserIDFn(ctx, userID)
}

func (m *mockContentRepo) CountByProjectID(ctx context.Context, projectID string) (int, int, error) {
	return m.countByProjectIDFn(ctx, projectID)
}

type mockProjects struct {
	current *model.Project
}

func (m *mockProjects) Current(ctx context.Context, userID string) (*model.Project, error) {
	return m.current, nil
}

func TestService_Write(t *testing.T) {
	var created *model.Content
	repo := &mockContentRepo{
		createFn: func(ctx context.Context, content *model.Content) error {
			created = content
			return nil
		},
	}
	projects := &mockProjects{current: &model.Project{ID: "p-1", UserID: "user-1"}}
	s := NewService(repo, projects)

	content, err := s.Write(context.Background(), "user-1", "牛乳を買う<br>卵も買う", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Body != "牛乳を買う  \n卵も買う" {
		t.Errorf("body = %q, want markdown line break", content.Body)
	}
	if content.ProjectID != "p-1" {
		t.Errorf("projectID = %s, want p-1", content.ProjectID)
	}
	if content.Depth != 1 {
		t.Errorf("depth = %d, want 1", content.Depth)
	}
	if created == nil {
		t.Error("content was not persisted")
	}
}

func TestService_Write_EmptyBody(t *testing.T) {
	s := NewService(&mockContentRepo{}, &mockProjects{current: &model.Project{ID: "p-1"}})

	_, err := s.Write(context.Background(), "user-1", "  ", 0)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmptyContent {
		t.Errorf("err = %v, want EMPTY_CONTENT", err)
	}
}

func TestService_Write_NoCurrentProject(t *testing.T) {
	s := NewService(&mockContentRepo{}, &mockProjects{current: nil})

	_, err := s.Write(context.Background(), "user-1", "task", 0)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNoCurrentProject {
		t.Errorf("err = %v, want NO_CURRENT_PROJECT", err)
	}
}

func TestService_ToggleDone(t *testing.T) {
	item := &model.Content{ID: "c-1", UserID: "user-1"}
	repo := &mockContentRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Content, error) {
			return item, nil
		},
		updateFn: func(ctx context.Context, content *model.Content) error {
			return nil
		},
	}
	s := NewService(repo, &mockProjects{})

	done, err := s.ToggleDone(context.Background(), "user-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done || item.DoneAt == nil {
		t.Error("task should be done with timestamp")
	}

	done, err = s.ToggleDone(context.Background(), "user-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done || item.DoneAt != nil {
		t.Error("second toggle should revert to open")
	}
}

func TestService_ToggleDone_MissingIsSoftFalse(t *testing.T) {
	repo := &mockContentRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Content, error) {
			return nil, nil
		},
	}
	s := NewService(repo, &mockProjects{})

	done, err := s.ToggleDone(context.Background(), "user-1", "gone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Error("missing content should report not done")
	}
}

func TestService_ToggleDone_OtherUsersContent(t *testing.T) {
	repo := &mockContentRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Content, error) {
			return &model.Content{ID: id, UserID: "someone-else", Done: false}, nil
		},
		updateFn: func(ctx context.Context, content *model.Content) error {
			t.Fatal("Update should not be called for another user's content")
			return nil
		},
	}
	s := NewService(repo, &mockProjects{})

	done, err := s.ToggleDone(context.Background(), "user-1", "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Error("other user's content should report not done")
	}
}

func TestService_Count(t *testing.T) {
	repo := &mockContentRepo{
		countByProjectIDFn: func(ctx context.Context, projectID string) (int, int, error) {
			return 5, 2, nil
		},
	}
	s := NewService(repo, &mockProjects{current: &model.Project{ID: "p-1"}})

	got, err := s.Count(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2/5" {
		t.Errorf("count = %s, want 2/5", got)
	}
}

func TestService_Count_NoCurrentProject(t *testing.T) {
	s := NewService(&mockContentRepo{}, &mockProjects{})

	got, err := s.Count(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0/0" {
		t.Errorf("count = %s, want 0/0", got)
	}
}

func TestService_ListForProject_Ordering(t *testing.T) {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	doneEarly := base.Add(10 * time.Hour)
	doneLate := base.Add(20 * time.Hour)
	repo := &mockContentRepo{
		listByProjectIDFn: func(ctx context.Context, projectID string) ([]*model.Content, error) {
			return []*model.Content{
				{ID: "open-2", CreatedAt: base.Add(2 * time.Hour)},
				{ID: "done-early", Done: true, DoneAt: &doneEarly, CreatedAt: base},
				{ID: "open-1", CreatedAt: base.Add(1 * time.Hour)},
				{ID: "done-late", Done: true, DoneAt: &doneLate, CreatedAt: base},
			}, nil
		},
	}
	s := NewService(repo, &mockProjects{})

	contents, err := s.ListForProject(context.Background(), "p-1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"open-1", "open-2", "done-late", "done-early"}
	if len(contents) != len(want) {
		t.Fatalf("len = %d, want %d", len(contents), len(want))
	}
	for i := range want {
		if contents[i].ID != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, contents[i].ID, want[i])
		}
	}

	// 完了タスク非表示の場合は未完了のみ。
	openOnly, err := s.ListForProject(context.Background(), "p-1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(openOnly) != 2 {
		t.Errorf("len = %d, want 2", len(openOnly))
	}
}
