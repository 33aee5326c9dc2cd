// Package project はプロジェクトの作成・選択・一覧・アーカイブを提供する。
package project

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

// recentLimit は最近使ったプロジェクト一覧の上限件数。
const recentLimit = 10

// settingsService は現在プロジェクトの読み書きに必要な設定操作。
type settingsService interface {
	Get(ctx context.Context, userID string) (*model.UserSetting, error)
	SetCurrentProject(ctx context.Context, userID, projectID string) error
}

// Service はプロジェクトサービス。
type Service struct {
	projectRepo repository.ProjectRepository
	settings    settingsService
	now         func() time.Time
	emoji       func() string
}

// NewService はServiceを生成する。
func NewService(projectRepo repository.ProjectRepository, settings settingsService) *Service {
	return &Service{
		projectRepo: projectRepo,
		settings:    settings,
		now:         time.Now,
		emoji:       randomEmoji,
	}
}

// Create は新規プロジェクトを作成し、現在のプロジェクトに設定する。
// 名前が空の場合はランダムな絵文字と当日の日付から生成する（例: 🦊26.05.01）。
func (s *Service) Create(ctx context.Context, userID string, kind model.ProjectKind, name string) (*model.Project, error) {
	now := s.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.emoji() + now.Format("06.01.02")
	}

	project := &model.Project{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          name,
		Kind:          kind,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     now,
		LastOpenedAt:  now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if err := s.settings.SetCurrentProject(ctx, userID, project.ID); err != nil {
		return nil, err
	}

	return project, nil
}

// ChangeCurrent は現在のプロジェクトを切り替え、最終オープン時刻を更新する。
// projectIDが"-"の場合はプロジェクト非表示（秘書ビュー等）への切り替えとして扱い、
// 設定のみを更新してnilを返す。
func (s *Service) ChangeCurrent(ctx context.Context, userID, projectID string) (*model.Project, error) {
	if projectID == model.CurrentProjectDash {
		if err := s.settings.SetCurrentProject(ctx, userID, model.CurrentProjectDash); err != nil {
			return nil, err
		}
		return nil, nil
	}

	project, err := s.findOwned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	project.LastOpenedAt = s.now()
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to touch project: %w", err)
	}
	if err := s.settings.SetCurrentProject(ctx, userID, project.ID); err != nil {
		return nil, err
	}

	return project, nil
}

// Rename は現在のプロジェクト名を変更する。
// 空の名前はランダムな絵文字に差し替え、変更がない場合は何もしない。
func (s *Service) Rename(ctx context.Context, userID, name string) (*model.Project, error) {
	project, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, model.NewNoCurrentProjectError()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.emoji()
	}
	if name == project.Name {
		return project, nil
	}

	project.Name = name
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to rename project: %w", err)
	}

	return project, nil
}

// ToggleArchive は現在のプロジェクトのアーカイブ状態を反転する。
// アーカイブ後は、残っているプロジェクトのうち最終オープンが最新のものを
// 現在のプロジェクトに指し直す。
func (s *Service) ToggleArchive(ctx context.Context, userID string) (*model.Project, error) {
	project, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, model.NewNoCurrentProjectError()
	}

	if project.Archived {
		project.Archived = false
		project.ArchivedAt = nil
	} else {
		now := s.now()
		project.Archived = true
		project.ArchivedAt = &now
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to toggle archive: %w", err)
	}

	if project.Archived {
		next, err := s.mostRecentlyOpened(ctx, userID)
		if err != nil {
			return nil, err
		}
		nextID := model.CurrentProjectNone
		if next != nil {
			nextID = next.ID
		}
		if err := s.settings.SetCurrentProject(ctx, userID, nextID); err != nil {
			return nil, err
		}
	}

	return project, nil
}

// List はユーザーの非アーカイブのタスクプロジェクトを名前順で返す。
// 並べ替えでは先頭の絵文字を無視する。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Project, error) {
	projects, err := s.listByKind(ctx, userID, model.ProjectKindTask)
	if err != nil {
		return nil, err
	}

	sort.Slice(projects, func(i, j int) bool {
		return sortKey(projects[i].Name) < sortKey(projects[j].Name)
	})
	return projects, nil
}

// ListDiary はユーザーの非アーカイブの日記プロジェクトを名前の降順で返す。
// 日記プロジェクト名は日付由来のため、降順で新しい日記が先頭に来る。
func (s *Service) ListDiary(ctx context.Context, userID string) ([]*model.Project, error) {
	projects, err := s.listByKind(ctx, userID, model.ProjectKindDiary)
	if err != nil {
		return nil, err
	}

	sort.Slice(projects, func(i, j int) bool {
		return sortKey(projects[i].Name) > sortKey(projects[j].Name)
	})
	return projects, nil
}

// Recent はユーザーのタスクプロジェクトを最終オープン時刻の新しい順で返す。
// 現在のプロジェクトは除外し、最大10件に丸める。
func (s *Service) Recent(ctx context.Context, userID string) ([]*model.Project, error) {
	setting, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	projects, err := s.listByKind(ctx, userID, model.ProjectKindTask)
	if err != nil {
		return nil, err
	}

	recent := make([]*model.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID == setting.CurrentProjectID {
			continue
		}
		recent = append(recent, p)
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].LastOpenedAt.After(recent[j].LastOpenedAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return recent, nil
}

// Current は現在のプロジェクトを返す。番兵値の場合はnilを返す。
// 参照先が削除・アーカイブ済み（参照切れ）の場合は、最終オープンが最新の
// プロジェクトへ指し直してそれを返す。
func (s *Service) Current(ctx context.Context, userID string) (*model.Project, error) {
	setting, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !setting.HasCurrentProject() {
		return nil, nil
	}

	project, err := s.projectRepo.FindByID(ctx, setting.CurrentProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find current project: %w", err)
	}
	if project != nil && project.UserID == userID && !project.Archived {
		return project, nil
	}

	// 参照切れ。残っているプロジェクトへフォールバックする。
	next, err := s.mostRecentlyOpened(ctx, userID)
	if err != nil {
		return nil, err
	}
	if next == nil {
		if err := s.settings.SetCurrentProject(ctx, userID, model.CurrentProjectNone); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err := s.settings.SetCurrentProject(ctx, userID, next.ID); err != nil {
		return nil, err
	}
	return next, nil
}

// CurrentName は現在のプロジェクト名を返す。未選択の場合は"-"を返す。
func (s *Service) CurrentName(ctx context.Context, userID string) (string, error) {
	project, err := s.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	if project == nil {
		return model.CurrentProjectDash, nil
	}
	return project.Name, nil
}

func (s *Service) listByKind(ctx context.Context, userID string, kind model.ProjectKind) ([]*model.Project, error) {
	projects, err := s.projectRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	filtered := make([]*model.Project, 0, len(projects))
	for _, p := range projects {
		if p.Kind == kind {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (s *Service) mostRecentlyOpened(ctx context.Context, userID string) (*model.Project, error) {
	projects, err := s.projectRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var latest *model.Project
	for _, p := range projects {
		if latest == nil || p.LastOpenedAt.After(latest.LastOpenedAt) {
			latest = p
		}
	}
	return latest, nil
}

func (s *Service) findOwned(ctx context.Context, userID, projectID string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project == nil || project.UserID != userID {
		return nil, model.NewProjectNotFoundError(projectID)
	}
	return project, nil
}
