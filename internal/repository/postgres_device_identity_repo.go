package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/bedrock/internal/model"
)

// PostgresDeviceIdentityRepo はPostgreSQLを使用したデバイストークン紐付けリポジトリ。
type PostgresDeviceIdentityRepo struct {
	db *sql.DB
}

// NewPostgresDeviceIdentityRepo はPostgresDeviceIdentityRepoを生成する。
func NewPostgresDeviceIdentityRepo(db *sql.DB) *PostgresDeviceIdentityRepo {
	return &PostgresDeviceIdentityRepo{db: db}
}

// FindByToken は指定トークンの紐付けを取得する。見つからない場合はnilを返す。
func (r *PostgresDeviceIdentityRepo) FindByToken(ctx context.Context, token string) (*model.DeviceIdentity, error) {
	ident := &model.DeviceIdentity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT device_token, user_id, schema_version, created_at
		 FROM device_identities WHERE device_token = $1`,
		token,
	).Scan(&ident.DeviceToken, &ident.UserID, &ident.SchemaVersion, &ident.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find device identity: %w", err)
	}

	return ident, nil
}

// CreateIfAbsent は紐付けを条件付きで作成する。
// ON CONFLICT DO NOTHINGにより、同一トークンへの同時初回アクセスでも
// 行を作成できるのは1リクエストのみとなる。
func (r *PostgresDeviceIdentityRepo) CreateIfAbsent(ctx context.Context, ident *model.DeviceIdentity) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO device_identities (device_token, user_id, schema_version, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (device_token) DO NOTHING`,
		ident.DeviceToken, ident.UserID, ident.SchemaVersion, ident.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert device identity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Upsert は紐付けを上書き保存する。
func (r *PostgresDeviceIdentityRepo) Upsert(ctx context.Context, ident *model.DeviceIdentity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_identities (device_token, user_id, schema_version, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (device_token) DO UPDATE SET user_id = EXCLUDED.user_id`,
		ident.DeviceToken, ident.UserID, ident.SchemaVersion, ident.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device identity: %w", err)
	}
	return nil
}

// DeleteByToken は指定トークンの紐付けを削除する。
// 対象が存在しない場合もエラーにしない（冪等）。
func (r *PostgresDeviceIdentityRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM device_identities WHERE device_token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete device identity: %w", err)
	}
	return nil
}

// compile-time interface check
var _ DeviceIdentityRepository = (*PostgresDeviceIdentityRepo)(nil)
