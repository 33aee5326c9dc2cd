// Package content はタスクの追加・完了切り替え・件数集計を提供する。
package content

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// projectService は現在のプロジェクト解決に必要な操作。
type projectService interface {
	Current(ctx context.Context, userID string) (*model.Project, error)
}

// Service はタスクサービス。
type Service struct {
	contentRepo repository.ContentRepository
	projects    projectService
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(contentRepo repository.ContentRepository, projects projectService) *Service {
	return &Service{
		contentRepo: contentRepo,
		projects:    projects,
		now:         time.Now,
	}
}

// Write は現在のプロジェクトにタスクを追加する。
// 本文中の<br>はMarkdownの改行に正規化する。空本文は拒否する。
func (s *Service) Write(ctx context.Context, userID, body string, depth int) (*model.Content, error) {
	body = normalizeBody(body)
	if body == "" {
		return nil, model.NewEmptyContentError()
	}
	if depth < 0 {
		depth = 0
	}

	project, err := s.projects.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, model.NewNoCurrentProjectError()
	}

	content := &model.Content{
		ID:            uuid.New().String(),
		ProjectID:     project.ID,
		UserID:        userID,
		Body:          body,
		Depth:         depth,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     s.now(),
	}
	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	return content, nil
}

// ToggleDone はタスクの完了状態を反転し、完了時刻を更新する。
// 存在しないIDはエラーにせずfalseを返す（クリック連打で先に消えた行を許容する）。
func (s *Service) ToggleDone(ctx context.Context, userID, contentID string) (bool, error) {
	content, err := s.contentRepo.FindByID(ctx, contentID)
	if err != nil {
		return false, fmt.Errorf("failed to find content: %w", err)
	}
	if content == nil || content.UserID != userID {
		return false, nil
	}

	if content.Done {
		content.Done = false
		content.DoneAt = nil
	} else {
		now := s.now()
		content.Done = true
		content.DoneAt = &now
	}

	if err := s.contentRepo.Update(ctx, content); err != nil {
		return false, fmt.Errorf("failed to update content: %w", err)
	}
	return content.Done, nil
}

// Count は現在のプロジェクトの「完了数/総数」を返す。
// プロジェクト未選択の場合は"0/0"を返す。
func (s *Service) Count(ctx context.Context, userID string) (string, error) {
	project, err := s.projects.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return "0/0", nil
	}

	total, done, err := s.contentRepo.CountByProjectID(ctx, project.ID)
	if err != nil {
		return "", fmt.Errorf("failed to count contents: %w", err)
	}
	return fmt.Sprintf("%d/%d", done, total), nil
}

// ListForProject はプロジェクトのタスクを表示順で返す。
// 未完了タスクを作成時刻の昇順で並べ、showDoneがtrueの場合は続けて
// 完了タスクを完了時刻の降順で並べる。
func (s *Service) ListForProject(ctx context.Context, projectID string, showDone bool) ([]*model.Content, error) {
	contents, err := s.contentRepo.ListByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}

	var open, done []*model.Content
	for _, c := range contents {
		if c.Done {
			done = append(done, c)
		} else {
			open = append(open, c)
		}
	}

	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	if !showDone {
		return open, nil
	}

	sort.Slice(done, func(i, j int) bool {
		ti, tj := done[i].CreatedAt, done[j].CreatedAt
		if done[i].DoneAt != nil {
			ti = *done[i].DoneAt
		}
		if done[j].DoneAt != nil {
			tj = *done[j].DoneAt
		}
		return ti.After(tj)
	})
	return append(open, done...), nil
}

func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "<br>", "  \n")
	body = strings.ReplaceAll(body, "<br/>", "  \n")
	return strings.TrimSpace(body)
}
