package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresUserSettingRepo はPostgreSQLを使用したユーザー設定リポジトリ。
type PostgresUserSettingRepo struct {
	db *sql.DB
}

// NewPostgresUserSettingRepo はPostgresUserSettingRepoを生成する。
func NewPostgresUserSettingRepo(db *sql.DB) *PostgresUserSettingRepo {
	return &PostgresUserSettingRepo{db: db}
}

// FindByUserID は指定ユーザーの設定を取得する。見つからない場合はnilを返す。
func (r *PostgresUserSettingRepo) FindByUserID(ctx context.Context, userID string) (*model.UserSetting, error) {
	setting := &model.UserSetting{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, current_project_id, show_date, show_done_task,
		        diary_summary, diary_summary_updated_at, schema_version, updated_at
		 FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(
		&setting.UserID, &setting.CurrentProjectID, &setting.ShowDate, &setting.ShowDoneTask,
		&setting.DiarySummary, &setting.DiarySummaryUpdatedAt, &setting.SchemaVersion, &setting.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user setting: %w", err)
	}

	return setting, nil
}

// Save は設定をUPSERTする。
func (r *PostgresUserSettingRepo) Save(ctx context.Context, setting *model.UserSetting) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings
		   (user_id, current_project_id, show_date, show_done_task,
		    diary_summary, diary_summary_updated_at, schema_version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		   current_project_id = EXCLUDED.current_project_id,
		   show_date = EXCLUDED.show_date,
		   show_done_task = EXCLUDED.show_done_task,
		   diary_summary = EXCLUDED.diary_summary,
		   diary_summary_updated_at = EXCLUDED.diary_summary_updated_at,
		   schema_version = EXCLUDED.schema_version,
		   updated_at = EXCLUDED.updated_at`,
		setting.UserID, setting.CurrentProjectID, setting.ShowDate, setting.ShowDoneTask,
		setting.DiarySummary, setting.DiarySummaryUpdatedAt, setting.SchemaVersion, setting.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user setting: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserSettingRepository = (*PostgresUserSettingRepo)(nil)
