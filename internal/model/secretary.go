// Package model はドメインモデルを定義する。
package model

import "time"

// SecretaryReport はLLMが生成したタスクブリーフィングを表す。
// ユーザーIDごとに1件で、ワーカーが1時間間隔を上限に更新する。
// BodyはMarkdownをHTMLに変換済みのテキスト。
type SecretaryReport struct {
	UserID        string
	Body          string
	SchemaVersion int
	UpdatedAt     time.Time
}
