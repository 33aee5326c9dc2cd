package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresEmailCodeRepo はPostgreSQLを使用したメール認証コードリポジトリ。
type PostgresEmailCodeRepo struct {
	db *sql.DB
}

// NewPostgresEmailCodeRepo はPostgresEmailCodeRepoを生成する。
func NewPostgresEmailCodeRepo(db *sql.DB) *PostgresEmailCodeRepo {
	return &PostgresEmailCodeRepo{db: db}
}

// Upsert は認証コードを上書き保存する。メールアドレスごとに最新の1件のみ保持する。
func (r *PostgresEmailCodeRepo) Upsert(ctx context.Context, code *model.EmailCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_codes (email, code, schema_version, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, created_at = EXCLUDED.created_at`,
		strings.ToLower(code.Email), code.Code, code.SchemaVersion, code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert email code: %w", err)
	}
	return nil
}

// FindByEmail は指定メールアドレスの認証コードを取得する。見つからない場合はnilを返す。
func (r *PostgresEmailCodeRepo) FindByEmail(ctx context.Context, email string) (*model.EmailCode, error) {
	code := &model.EmailCode{}
	err := r.db.QueryRowContext(ctx,
		`SELECT email, code, schema_version, created_at
		 FROM email_codes WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&code.Email, &code.Code, &code.SchemaVersion, &code.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find email code: %w", err)
	}

	return code, nil
}

// DeleteOlderThan は指定時刻より古い認証コードを削除し、削除件数を返す。
// クリーンアップジョブから日次で呼び出される。
func (r *PostgresEmailCodeRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM email_codes WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired email codes: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// compile-time interface check
var _ EmailCodeRepository = (*PostgresEmailCodeRepo)(nil)
