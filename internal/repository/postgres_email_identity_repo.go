package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresEmailIdentityRepo はPostgreSQLを使用したメールアドレス紐付けリポジトリ。
type PostgresEmailIdentityRepo struct {
	db *sql.DB
}

// NewPostgresEmailIdentityRepo はPostgresEmailIdentityRepoを生成する。
func NewPostgresEmailIdentityRepo(db *sql.DB) *PostgresEmailIdentityRepo {
	return &PostgresEmailIdentityRepo{db: db}
}

// FindByEmail は指定メールアドレスの紐付けを取得する。見つからない場合はnilを返す。
func (r *PostgresEmailIdentityRepo) FindByEmail(ctx context.Context, email string) (*model.EmailIdentity, error) {
	ident := &model.EmailIdentity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT email, user_id, schema_version, created_at
		 FROM email_identities WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&ident.Email, &ident.UserID, &ident.SchemaVersion, &ident.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find email identity by email: %w", err)
	}

	return ident, nil
}

// FindByUserID は指定ユーザーの紐付けを取得する。見つからない場合はnilを返す。
func (r *PostgresEmailIdentityRepo) FindByUserID(ctx context.Context, userID string) (*model.EmailIdentity, error) {
	ident := &model.EmailIdentity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT email, user_id, schema_version, created_at
		 FROM email_identities WHERE user_id = $1`,
		userID,
	).Scan(&ident.Email, &ident.UserID, &ident.SchemaVersion, &ident.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find email identity by user ID: %w", err)
	}

	return ident, nil
}

// Upsert は紐付けを上書き保存する（last-write-wins）。
func (r *PostgresEmailIdentityRepo) Upsert(ctx context.Context, ident *model.EmailIdentity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_identities (email, user_id, schema_version, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE SET user_id = EXCLUDED.user_id`,
		strings.ToLower(ident.Email), ident.UserID, ident.SchemaVersion, ident.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert email identity: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの紐付けを削除する。
func (r *PostgresEmailIdentityRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM email_identities WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete email identity: %w", err)
	}
	return nil
}

// compile-time interface check
var _ EmailIdentityRepository = (*PostgresEmailIdentityRepo)(nil)
