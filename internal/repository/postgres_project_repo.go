package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用したプロジェクトリポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	project := &model.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind, archived, schema_version,
		        created_at, last_opened_at, archived_at
		 FROM projects WHERE id = $1`,
		id,
	).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Kind, &project.Archived,
		&project.SchemaVersion, &project.CreatedAt, &project.LastOpenedAt, &project.ArchivedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return project, nil
}

// Create はプロジェクトを作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects
		   (id, user_id, name, kind, archived, schema_version, created_at, last_opened_at, archived_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		project.ID, project.UserID, project.Name, project.Kind, project.Archived,
		project.SchemaVersion, project.CreatedAt, project.LastOpenedAt, project.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// Update はプロジェクトの名前・アーカイブ状態・最終オープン時刻を更新する。
func (r *PostgresProjectRepo) Update(ctx context.Context, project *model.Project) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects
		 SET name = $2, archived = $3, last_opened_at = $4, archived_at = $5
		 WHERE id = $1`,
		project.ID, project.Name, project.Archived, project.LastOpenedAt, project.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project not found: %s", project.ID)
	}

	return nil
}

// ListByUserID はユーザーの非アーカイブプロジェクト一覧を返す。
func (r *PostgresProjectRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind, archived, schema_version,
		        created_at, last_opened_at, archived_at
		 FROM projects WHERE user_id = $1 AND archived = FALSE`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project := &model.Project{}
		if err := rows.Scan(
			&project.ID, &project.UserID, &project.Name, &project.Kind, &project.Archived,
			&project.SchemaVersion, &project.CreatedAt, &project.LastOpenedAt, &project.ArchivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
