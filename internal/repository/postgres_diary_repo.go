package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresDiaryRepo はPostgreSQLを使用した日記本文リポジトリ。
type PostgresDiaryRepo struct {
	db *sql.DB
}

// NewPostgresDiaryRepo はPostgresDiaryRepoを生成する。
func NewPostgresDiaryRepo(db *sql.DB) *PostgresDiaryRepo {
	return &PostgresDiaryRepo{db: db}
}

// FindByProjectID は指定プロジェクトの日記本文を取得する。見つからない場合はnilを返す。
func (r *PostgresDiaryRepo) FindByProjectID(ctx context.Context, projectID string) (*model.DiaryContent, error) {
	diary := &model.DiaryContent{}
	err := r.db.QueryRowContext(ctx,
		`SELECT project_id, user_id, body, summary, schema_version, updated_at
		 FROM diary_contents WHERE project_id = $1`,
		projectID,
	).Scan(&diary.ProjectID, &diary.UserID, &diary.Body, &diary.Summary, &diary.SchemaVersion, &diary.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find diary content: %w", err)
	}

	return diary, nil
}

// Save は日記本文をUPSERTする。
func (r *PostgresDiaryRepo) Save(ctx context.Context, diary *model.DiaryContent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO diary_contents (project_id, user_id, body, summary, schema_version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (project_id) DO UPDATE SET
		   body = EXCLUDED.body,
		   summary = EXCLUDED.summary,
		   updated_at = EXCLUDED.updated_at`,
		diary.ProjectID, diary.UserID, diary.Body, diary.Summary, diary.SchemaVersion, diary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save diary content: %w", err)
	}
	return nil
}

// compile-time interface check
var _ DiaryRepository = (*PostgresDiaryRepo)(nil)
