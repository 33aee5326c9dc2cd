// Package model はドメインモデルを定義する。
package model

import "time"

const (
	// CurrentProjectNone はプロジェクト未選択を表す番兵値。
	// 初回作成時のデフォルト値として使用する。
	CurrentProjectNone = "project-0"
	// CurrentProjectDash はプロジェクト非表示（秘書ビュー等）を表す番兵値。
	CurrentProjectDash = "-"
)

// UserSetting はユーザーごとの表示設定と現在のプロジェクトを保持する。
// ユーザーIDごとに1件で、初回アクセス時にデフォルト値で遅延作成される。
type UserSetting struct {
	UserID                string
	CurrentProjectID      string
	ShowDate              bool
	ShowDoneTask          bool
	DiarySummary          string
	DiarySummaryUpdatedAt time.Time
	SchemaVersion         int
	UpdatedAt             time.Time
}

// NewDefaultUserSetting はデフォルト値のUserSettingを生成する。
func NewDefaultUserSetting(userID string) *UserSetting {
	return &UserSetting{
		UserID:           userID,
		CurrentProjectID: CurrentProjectNone,
		ShowDate:         false,
		ShowDoneTask:     false,
		SchemaVersion:    SchemaVersionCurrent,
		UpdatedAt:        time.Now(),
	}
}

// HasCurrentProject は現在のプロジェクトが番兵値でないかを返す。
// 番兵値の場合でも参照先プロジェクトが削除済みの可能性はあるため、
// 呼び出し側はnilプロジェクトを許容すること。
func (s *UserSetting) HasCurrentProject() bool {
	return s.CurrentProjectID != CurrentProjectNone && s.CurrentProjectID != CurrentProjectDash && s.CurrentProjectID != ""
}
