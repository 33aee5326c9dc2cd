package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresContentRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresContentRepo struct {
	db *sql.DB
}

// NewPostgresContentRepo はPostgresContentRepoを生成する。
func NewPostgresContentRepo(db *sql.DB) *PostgresContentRepo {
	return &PostgresContentRepo{db: db}
}

const contentColumns = `id, project_id, user_id, body, depth, done, is_template,
	schema_version, created_at, done_at`

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresContentRepo) FindByID(ctx context.Context, id string) (*model.Content, error) {
	content := &model.Content{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = $1`,
		id,
	).Scan(
		&content.ID, &content.ProjectID, &content.UserID, &content.Body, &content.Depth,
		&content.Done, &content.IsTemplate, &content.SchemaVersion, &content.CreatedAt, &content.DoneAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find content: %w", err)
	}

	return content, nil
}

// Create はタスクを作成する。
func (r *PostgresContentRepo) Create(ctx context.Context, content *model.Content) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contents
		   (id, project_id, user_id, body, depth, done, is_template, schema_version, created_at, done_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		content.ID, content.ProjectID, content.UserID, content.Body, content.Depth,
		content.Done, content.IsTemplate, content.SchemaVersion, content.CreatedAt, content.DoneAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert content: %w", err)
	}
	return nil
}

// Update はタスクの完了状態を更新する。
func (r *PostgresContentRepo) Update(ctx context.Context, content *model.Content) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contents SET body = $2, done = $3, done_at = $4 WHERE id = $1`,
		content.ID, content.Body, content.Done, content.DoneAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("content not found: %s", content.ID)
	}

	return nil
}

// ListByProjectID はプロジェクトの全タスクを返す。
func (r *PostgresContentRepo) ListByProjectID(ctx context.Context, projectID string) ([]*model.Content, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE project_id = $1`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}
	defer rows.Close()

	return scanContents(rows)
}

// ListOpenByUserID はユーザーの未完了かつ非テンプレートのタスクを作成時刻昇順で返す。
func (r *PostgresContentRepo) ListOpenByUserID(ctx context.Context, userID string) ([]*model.Content, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+`
		 FROM contents
		 WHERE user_id = $1 AND done = FALSE AND is_template = FALSE
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list open contents: %w", err)
	}
	defer rows.Close()

	return scanContents(rows)
}

// CountByProjectID はプロジェクトのタスク総数と完了数を返す。
func (r *PostgresContentRepo) CountByProjectID(ctx context.Context, projectID string) (int, int, error) {
	var total, done int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE done) FROM contents WHERE project_id = $1`,
		projectID,
	).Scan(&total, &done)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count contents: %w", err)
	}
	return total, done, nil
}

// scanContents は行セットをContentのスライスに変換する。
func scanContents(rows *sql.Rows) ([]*model.Content, error) {
	var contents []*model.Content
	for rows.Next() {
		content := &model.Content{}
		if err := rows.Scan(
			&content.ID, &content.ProjectID, &content.UserID, &content.Body, &content.Depth,
			&content.Done, &content.IsTemplate, &content.SchemaVersion, &content.CreatedAt, &content.DoneAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contents: %w", err)
	}
	return contents, nil
}

// compile-time interface check
var _ ContentRepository = (*PostgresContentRepo)(nil)
