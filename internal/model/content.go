// Package model はドメインモデルを定義する。
package model

import "time"

// Content はタスクプロジェクトに属する1件のタスクを表す。
// depthは親タスクに対するネストの深さを示し、0がトップレベル。
type Content struct {
	ID            string
	ProjectID     string
	UserID        string
	Body          string // Markdownテキスト
	Depth         int
	Done          bool
	IsTemplate    bool // 初期プロビジョニングで投入されたテンプレートタスク
	SchemaVersion int
	CreatedAt     time.Time
	DoneAt        *time.Time
}

// DiaryContent は日記プロジェクトの本文を表す。
// 日記プロジェクトごとに1件で、初回オープン時に遅延作成される。
// SummaryはLLMによる要約で、本文保存時に更新される。
type DiaryContent struct {
	ProjectID     string
	UserID        string
	Body          string
	Summary       string
	SchemaVersion int
	UpdatedAt     time.Time
}
