// Package model はドメインモデルを定義する。
package model

import "time"

// SchemaVersionCurrent は各レコードの現行スキーマバージョン。
// フィールド追加などの互換性のない変更時にインクリメントする。
const SchemaVersionCurrent = 1

// DeviceIdentity はデバイストークンとユーザーIDの紐付けを表す。
// 初回アクセス時に1度だけ作成され、以降は不変として扱う
// （メール連携によるアカウント引き継ぎ時のみ付け替えが発生する）。
type DeviceIdentity struct {
	DeviceToken   string
	UserID        string
	SchemaVersion int
	CreatedAt     time.Time
}

// EmailIdentity は認証済みメールアドレスとユーザーIDの紐付けを表す。
// メールアドレスは小文字に正規化して保存する。
// 同一メールアドレスの再認証はlast-write-winsで上書きされる
// （アカウント引き継ぎとして扱う）。
type EmailIdentity struct {
	Email         string
	UserID        string
	SchemaVersion int
	CreatedAt     time.Time
}

// EmailCode はメール認証用のワンタイムコードを表す。
// メールアドレスごとに最新の1件のみ保持する。
type EmailCode struct {
	Email         string
	Code          string
	SchemaVersion int
	CreatedAt     time.Time
}
