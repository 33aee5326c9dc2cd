package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresSecretaryRepo はPostgreSQLを使用した秘書レポートリポジトリ。
type PostgresSecretaryRepo struct {
	db *sql.DB
}

// NewPostgresSecretaryRepo はPostgresSecretaryRepoを生成する。
func NewPostgresSecretaryRepo(db *sql.DB) *PostgresSecretaryRepo {
	return &PostgresSecretaryRepo{db: db}
}

// FindByUserID は指定ユーザーのレポートを取得する。見つからない場合はnilを返す。
func (r *PostgresSecretaryRepo) FindByUserID(ctx context.Context, userID string) (*model.SecretaryReport, error) {
	report := &model.SecretaryReport{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, body, schema_version, updated_at
		 FROM secretary_reports WHERE user_id = $1`,
		userID,
	).Scan(&report.UserID, &report.Body, &report.SchemaVersion, &report.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find secretary report: %w", err)
	}

	return report, nil
}

// Save はレポートをUPSERTする。
func (r *PostgresSecretaryRepo) Save(ctx context.Context, report *model.SecretaryReport) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO secretary_reports (user_id, body, schema_version, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   body = EXCLUDED.body,
		   updated_at = EXCLUDED.updated_at`,
		report.UserID, report.Body, report.SchemaVersion, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save secretary report: %w", err)
	}
	return nil
}

// ListUserIDs はレポート更新対象となる、メール連携済みの全ユーザーIDを返す。
// レポートはメール連携ユーザーにのみ提供されるため、対象をその集合に絞る。
func (r *PostgresSecretaryRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM email_identities`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list secretary target users: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user IDs: %w", err)
	}

	return userIDs, nil
}

// compile-time interface check
var _ SecretaryRepository = (*PostgresSecretaryRepo)(nil)
