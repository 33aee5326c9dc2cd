// Package secretary はタスクの棚卸しレポートの生成と配信を提供する。
// レポートはメール連携済みユーザーを対象に、バックグラウンドジョブが
// LLMで定期生成する。リクエスト経路は保存済みレポートを読むだけで、
// 生成は行わない。
package secretary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/bedrock/internal/llm"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/render"
	"github.com/hitoshi/bedrock/internal/repository"
)

// reportPrompt はレポート生成プロンプトの前置き。
const reportPrompt = `あなたは有能な秘書です。以下のタスク一覧と日記の要約をもとに、
今日やるべきことの提案を日本語のMarkdownで簡潔にまとめてください。

`

// Service は秘書レポートサービス。
type Service struct {
	secretaryRepo   repository.SecretaryRepository
	emailRepo       repository.EmailIdentityRepository
	projectRepo     repository.ProjectRepository
	contentRepo     repository.ContentRepository
	diaryRepo       repository.DiaryRepository
	llmClient       llm.Client
	renderer        *render.Renderer
	refreshInterval time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	secretaryRepo repository.SecretaryRepository,
	emailRepo repository.EmailIdentityRepository,
	projectRepo repository.ProjectRepository,
	contentRepo repository.ContentRepository,
	diaryRepo repository.DiaryRepository,
	llmClient llm.Client,
	renderer *render.Renderer,
	refreshInterval time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		secretaryRepo:   secretaryRepo,
		emailRepo:       emailRepo,
		projectRepo:     projectRepo,
		contentRepo:     contentRepo,
		diaryRepo:       diaryRepo,
		llmClient:       llmClient,
		renderer:        renderer,
		refreshInterval: refreshInterval,
		logger:          logger,
		now:             time.Now,
	}
}

// Report は保存済みの秘書レポートをHTML断片で返す。
// メール未連携のユーザーには利用させない。
// レポートがまだ生成されていない場合は準備中の断片を返す。
func (s *Service) Report(ctx context.Context, userID string) (string, error) {
	ident, err := s.emailRepo.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("メール紐付けの取得に失敗しました: %w", err)
	}
	if ident == nil {
		return "", model.NewEmailNotLinkedError()
	}

	report, err := s.secretaryRepo.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("秘書レポートの取得に失敗しました: %w", err)
	}
	if report == nil {
		return `<div class="secretary">レポートを準備しています。しばらくお待ちください。</div>`, nil
	}

	body, err := s.renderer.Markdown(report.Body)
	if err != nil {
		return "", err
	}
	return `<div class="secretary">` + body + s.renderer.UpdatedAtFooter(report.UpdatedAt) + `</div>`, nil
}

// Refresh はユーザーの秘書レポートをLLMで再生成して保存する。
// 前回の更新から一定時間（デフォルト1時間）経っていない場合は何もしない。
func (s *Service) Refresh(ctx context.Context, userID string) error {
	existing, err := s.secretaryRepo.FindByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("秘書レポートの取得に失敗しました: %w", err)
	}
	if existing != nil && s.now().Sub(existing.UpdatedAt) < s.refreshInterval {
		return nil
	}

	prompt, err := s.buildPrompt(ctx, userID)
	if err != nil {
		return err
	}

	body, err := s.llmClient.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("秘書レポートの生成に失敗しました: %w", err)
	}

	if err := s.secretaryRepo.Save(ctx, &model.SecretaryReport{
		UserID:        userID,
		Body:          body,
		SchemaVersion: model.SchemaVersionCurrent,
		UpdatedAt:     s.now(),
	}); err != nil {
		return fmt.Errorf("秘書レポートの保存に失敗しました: %w", err)
	}

	s.logger.Info("秘書レポートを更新しました",
		slog.String("user_id", userID),
	)
	return nil
}

// buildPrompt はタスク棚卸しと日記要約からプロンプトを組み立てる。
func (s *Service) buildPrompt(ctx context.Context, userID string) (string, error) {
	projects, err := s.projectRepo.ListByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	contents, err := s.contentRepo.ListOpenByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("未完了タスクの取得に失敗しました: %w", err)
	}

	byProject := make(map[string][]*model.Content, len(projects))
	for _, c := range contents {
		byProject[c.ProjectID] = append(byProject[c.ProjectID], c)
	}

	var b strings.Builder
	b.WriteString(reportPrompt)
	b.WriteString("## タスク一覧\n")
	for _, p := range projects {
		if p.Kind != model.ProjectKindTask {
			continue
		}
		items := byProject[p.ID]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", p.Name)
		for _, c := range items {
			fmt.Fprintf(&b, "- %s\n", c.Body)
		}
	}

	digest, err := s.diaryDigest(ctx, userID, projects)
	if err != nil {
		return "", err
	}
	if digest != "" {
		b.WriteString("\n## 最近の日記の要約\n")
		b.WriteString(digest)
	}

	return b.String(), nil
}

// diaryDigest は日記プロジェクトの要約を1行ずつ集めて返す。
func (s *Service) diaryDigest(ctx context.Context, userID string, projects []*model.Project) (string, error) {
	var b strings.Builder
	for _, p := range projects {
		if p.Kind != model.ProjectKindDiary {
			continue
		}
		diary, err := s.diaryRepo.FindByProjectID(ctx, p.ID)
		if err != nil {
			return "", fmt.Errorf("日記の取得に失敗しました: %w", err)
		}
		if diary == nil || diary.Summary == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, diary.Summary)
	}
	return b.String(), nil
}
