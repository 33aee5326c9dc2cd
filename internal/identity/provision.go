package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// Provisioner は新規ユーザーの初期データ一式を払い出す。
type Provisioner struct {
	provisionRepo repository.ProvisionRepository
	now           func() time.Time
}

// NewProvisioner はProvisionerを生成する。
func NewProvisioner(provisionRepo repository.ProvisionRepository) *Provisioner {
	return &Provisioner{
		provisionRepo: provisionRepo,
		now:           time.Now,
	}
}

// Provision は新規ユーザーの既定データを1トランザクションで作成する。
// サンプル付きの「買いたいもの」プロジェクト、日付入りのウェルカムプロジェクト、
// ウェルカムプロジェクトを現在プロジェクトに指した設定レコードの3点で、
// 全て成功するか全て作成されないかのどちらかになる。
// 戻り値はウェルカムプロジェクトのIDである。
func (p *Provisioner) Provision(ctx context.Context, userID string) (string, error) {
	now := p.now()

	wishlist := &model.Project{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          "🛒買いたいもの",
		Kind:          model.ProjectKindTask,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     now,
		LastOpenedAt:  now,
	}

	// ウェルカムプロジェクトを最終閲覧が最新になるようにずらし、
	// 初回表示で先頭に来るようにする。
	welcome := &model.Project{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          "🦊" + now.Format("06.01.02"),
		Kind:          model.ProjectKindTask,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     now,
		LastOpenedAt:  now.Add(time.Second),
	}

	contents := make([]*model.Content, 0, 5)
	for i, body := range []string{"AirPods Max", "Mac mini", "ドラム式洗濯機"} {
		contents = append(contents, templateContent(wishlist, body, now.Add(time.Duration(i)*time.Millisecond)))
	}
	for i, body := range []string{"こんにちは🥳 ようこそ！", "タスクを自由に追加してみましょう"} {
		contents = append(contents, templateContent(welcome, body, now.Add(time.Duration(i)*time.Millisecond)))
	}

	setting := model.NewDefaultUserSetting(userID)
	setting.CurrentProjectID = welcome.ID

	if err := p.provisionRepo.CreateDefaults(ctx, []*model.Project{wishlist, welcome}, contents, setting); err != nil {
		return "", fmt.Errorf("failed to provision defaults: %w", err)
	}

	return welcome.ID, nil
}

func templateContent(project *model.Project, body string, createdAt time.Time) *model.Content {
	return &model.Content{
		ID:            uuid.New().String(),
		ProjectID:     project.ID,
		UserID:        project.UserID,
		Body:          body,
		IsTemplate:    true,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     createdAt,
	}
}
