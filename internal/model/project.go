// Package model はドメインモデルを定義する。
package model

import "time"

// Project はタスクリストまたは日記ストリームのコンテナを表す。
type Project struct {
	ID            string
	UserID        string
	Name          string
	Kind          ProjectKind
	Archived      bool
	SchemaVersion int
	CreatedAt     time.Time
	LastOpenedAt  time.Time
	ArchivedAt    *time.Time
}

// ProjectKind はプロジェクトの種別を表す。
type ProjectKind string

const (
	// ProjectKindTask はタスクリストのプロジェクト。
	ProjectKindTask ProjectKind = "task"
	// ProjectKindDiary は日記ストリームのプロジェクト。
	ProjectKindDiary ProjectKind = "diary"
)
