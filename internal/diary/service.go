// Package diary は日記本文の読み書きとLLMによる要約更新を提供する。
package diary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/bedrock/internal/llm"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// summaryPrompt は日記要約のプロンプトの前置き。
const summaryPrompt = "次の日記を読んで、内容を日本語の1〜2文で要約してください。要約だけを返してください。\n\n"

// projectService は現在のプロジェクト解決に必要な操作。
type projectService interface {
	Current(ctx context.Context, userID string) (*model.Project, error)
}

// Service は日記サービス。
type Service struct {
	diaryRepo repository.DiaryRepository
	projects  projectService
	llmClient llm.Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(diaryRepo repository.DiaryRepository, projects projectService, llmClient llm.Client, logger *slog.Logger) *Service {
	return &Service{
		diaryRepo: diaryRepo,
		projects:  projects,
		llmClient: llmClient,
		logger:    logger,
		now:       time.Now,
	}
}

// Open はプロジェクトの日記本文を返す。
// 行が存在しない場合は空本文の行を作成して返す（初回オープンの遅延作成）。
func (s *Service) Open(ctx context.Context, userID, projectID string) (*model.DiaryContent, error) {
	diary, err := s.diaryRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("日記の取得に失敗しました: %w", err)
	}
	if diary != nil {
		return diary, nil
	}

	diary = &model.DiaryContent{
		ProjectID:     projectID,
		UserID:        userID,
		SchemaVersion: model.SchemaVersionCurrent,
		UpdatedAt:     s.now(),
	}
	if err := s.diaryRepo.Save(ctx, diary); err != nil {
		return nil, fmt.Errorf("日記の作成に失敗しました: %w", err)
	}
	return diary, nil
}

// SaveBody は現在のプロジェクトの日記本文を保存する。
// 本文に変更がない場合は何もしない。変更があった場合は保存後にLLMで要約を更新する。
// 要約の生成に失敗しても本文の保存は成功として扱い、前回の要約を維持する。
func (s *Service) SaveBody(ctx context.Context, userID, body string) (*model.DiaryContent, error) {
	project, err := s.projects.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, model.NewNoCurrentProjectError()
	}

	diary, err := s.Open(ctx, userID, project.ID)
	if err != nil {
		return nil, err
	}
	if diary.Body == body {
		return diary, nil
	}

	diary.Body = body
	diary.UpdatedAt = s.now()

	if summary, err := s.llmClient.Complete(ctx, summaryPrompt+body); err != nil {
		s.logger.Warn("日記要約の生成に失敗しました。前回の要約を維持します",
			slog.String("project_id", project.ID),
			slog.String("error", err.Error()),
		)
	} else {
		diary.Summary = summary
	}

	if err := s.diaryRepo.Save(ctx, diary); err != nil {
		return nil, fmt.Errorf("日記の保存に失敗しました: %w", err)
	}
	return diary, nil
}
