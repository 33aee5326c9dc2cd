package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresProvisionRepo はPostgreSQLを使用した初回プロビジョニングリポジトリ。
type PostgresProvisionRepo struct {
	db *sql.DB
}

// NewPostgresProvisionRepo はPostgresProvisionRepoを生成する。
func NewPostgresProvisionRepo(db *sql.DB) *PostgresProvisionRepo {
	return &PostgresProvisionRepo{db: db}
}

// CreateDefaults はデフォルトプロジェクト・テンプレートタスク・初期設定を
// 同一トランザクションで作成する。
// 複数レコードの個別書き込みでは途中クラッシュ時に中途半端な状態が残るため、
// プロビジョニング全体を1トランザクションにまとめる。
func (r *PostgresProvisionRepo) CreateDefaults(
	ctx context.Context,
	projects []*model.Project,
	contents []*model.Content,
	setting *model.UserSetting,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, project := range projects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects
			   (id, user_id, name, kind, archived, schema_version, created_at, last_opened_at, archived_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			project.ID, project.UserID, project.Name, project.Kind, project.Archived,
			project.SchemaVersion, project.CreatedAt, project.LastOpenedAt, project.ArchivedAt,
		); err != nil {
			return fmt.Errorf("failed to insert default project: %w", err)
		}
	}

	for _, content := range contents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contents
			   (id, project_id, user_id, body, depth, done, is_template, schema_version, created_at, done_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			content.ID, content.ProjectID, content.UserID, content.Body, content.Depth,
			content.Done, content.IsTemplate, content.SchemaVersion, content.CreatedAt, content.DoneAt,
		); err != nil {
			return fmt.Errorf("failed to insert template content: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_settings
		   (user_id, current_project_id, show_date, show_done_task,
		    diary_summary, diary_summary_updated_at, schema_version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		   current_project_id = EXCLUDED.current_project_id,
		   updated_at = EXCLUDED.updated_at`,
		setting.UserID, setting.CurrentProjectID, setting.ShowDate, setting.ShowDoneTask,
		setting.DiarySummary, setting.DiarySummaryUpdatedAt, setting.SchemaVersion, setting.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert default user setting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ ProvisionRepository = (*PostgresProvisionRepo)(nil)
