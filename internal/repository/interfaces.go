// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/bedrock/internal/model"
)

// DeviceIdentityRepository はデバイストークン紐付けの永続化インターフェース。
type DeviceIdentityRepository interface {
	// FindByToken は指定トークンの紐付けを取得する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.DeviceIdentity, error)

	// CreateIfAbsent は紐付けを条件付きで作成する。
	// 同一トークンの行が既に存在する場合は何もせずfalseを返す。
	// 初回アクセスの同時リクエスト競合で勝者を1人に絞るために使用する。
	CreateIfAbsent(ctx context.Context, ident *model.DeviceIdentity) (bool, error)

	// Upsert は紐付けを上書き保存する。
	// メール連携によるアカウント引き継ぎでトークンの指すユーザーを付け替える。
	Upsert(ctx context.Context, ident *model.DeviceIdentity) error

	// DeleteByToken は指定トークンの紐付けを削除する。
	DeleteByToken(ctx context.Context, token string) error
}

// EmailIdentityRepository はメールアドレス紐付けの永続化インターフェース。
type EmailIdentityRepository interface {
	// FindByEmail は指定メールアドレスの紐付けを取得する。見つからない場合はnilを返す。
	// メールアドレスは小文字に正規化して検索する。
	FindByEmail(ctx context.Context, email string) (*model.EmailIdentity, error)

	// FindByUserID は指定ユーザーの紐付けを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.EmailIdentity, error)

	// Upsert は紐付けを上書き保存する（last-write-wins）。
	Upsert(ctx context.Context, ident *model.EmailIdentity) error

	// DeleteByUserID は指定ユーザーの紐付けを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// EmailCodeRepository はメール認証コードの永続化インターフェース。
type EmailCodeRepository interface {
	// Upsert は認証コードを上書き保存する。メールアドレスごとに最新の1件のみ保持する。
	Upsert(ctx context.Context, code *model.EmailCode) error

	// FindByEmail は指定メールアドレスの認証コードを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.EmailCode, error)

	// DeleteOlderThan は指定時刻より古い認証コードを削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserSettingRepository はユーザー設定の永続化インターフェース。
type UserSettingRepository interface {
	// FindByUserID は指定ユーザーの設定を取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.UserSetting, error)

	// Save は設定をUPSERTする。
	Save(ctx context.Context, setting *model.UserSetting) error
}

// ProjectRepository はプロジェクトの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// Create はプロジェクトを作成する。
	Create(ctx context.Context, project *model.Project) error

	// Update はプロジェクトの名前・アーカイブ状態・最終オープン時刻を更新する。
	Update(ctx context.Context, project *model.Project) error

	// ListByUserID はユーザーの非アーカイブプロジェクト一覧を返す。
	// 並び順は呼び出し側で適用する。
	ListByUserID(ctx context.Context, userID string) ([]*model.Project, error)
}

// ContentRepository はタスクの永続化インターフェース。
type ContentRepository interface {
	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Content, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, content *model.Content) error

	// Update はタスクの完了状態を更新する。
	Update(ctx context.Context, content *model.Content) error

	// ListByProjectID はプロジェクトの全タスクを返す。並び順は呼び出し側で適用する。
	ListByProjectID(ctx context.Context, projectID string) ([]*model.Content, error)

	// ListOpenByUserID はユーザーの未完了かつ非テンプレートのタスクを
	// 作成時刻昇順で返す。秘書レポートのタスク棚卸しに使用する。
	ListOpenByUserID(ctx context.Context, userID string) ([]*model.Content, error)

	// CountByProjectID はプロジェクトのタスク総数と完了数を返す。
	CountByProjectID(ctx context.Context, projectID string) (total int, done int, err error)
}

// DiaryRepository は日記本文の永続化インターフェース。
type DiaryRepository interface {
	// FindByProjectID は指定プロジェクトの日記本文を取得する。見つからない場合はnilを返す。
	FindByProjectID(ctx context.Context, projectID string) (*model.DiaryContent, error)

	// Save は日記本文をUPSERTする。
	Save(ctx context.Context, diary *model.DiaryContent) error
}

// SecretaryRepository は秘書レポートの永続化インターフェース。
type SecretaryRepository interface {
	// FindByUserID は指定ユーザーのレポートを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.SecretaryReport, error)

	// Save はレポートをUPSERTする。
	Save(ctx context.Context, report *model.SecretaryReport) error

	// ListUserIDs はレポート更新対象となる、メール連携済みの全ユーザーIDを返す。
	ListUserIDs(ctx context.Context) ([]string, error)
}

// ProvisionRepository は初回プロビジョニングの永続化インターフェース。
type ProvisionRepository interface {
	// CreateDefaults はデフォルトプロジェクト・テンプレートタスク・初期設定を
	// 同一トランザクションで作成する。途中で失敗した場合は全件ロールバックされる。
	CreateDefaults(ctx context.Context, projects []*model.Project, contents []*model.Content, setting *model.UserSetting) error
}
