// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, project, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeProjectNotFound  = "PROJECT_NOT_FOUND"
	ErrCodeContentNotFound  = "CONTENT_NOT_FOUND"
	ErrCodeNoCurrentProject = "NO_CURRENT_PROJECT"
	ErrCodeInvalidEmail     = "INVALID_EMAIL"
	ErrCodeCodeMismatch     = "CODE_MISMATCH"
	ErrCodeEmailNotLinked   = "EMAIL_NOT_LINKED"
	ErrCodeEmptyContent     = "EMPTY_CONTENT"
	ErrCodeLLMUnavailable   = "LLM_UNAVAILABLE"
)

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: "project",
		Action:   "プロジェクト一覧から選び直してください。",
	}
}

// NewContentNotFoundError はタスク未検出エラーを生成する。
func NewContentNotFoundError(contentID string) *APIError {
	return &APIError{
		Code:     ErrCodeContentNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", contentID),
		Category: "project",
		Action:   "画面を再読み込みしてください。",
	}
}

// NewNoCurrentProjectError はプロジェクト未選択エラーを生成する。
func NewNoCurrentProjectError() *APIError {
	return &APIError{
		Code:     ErrCodeNoCurrentProject,
		Message:  "プロジェクトが選択されていません。",
		Category: "project",
		Action:   "プロジェクトを選択するか、新規作成してください。",
	}
}

// NewInvalidEmailError は無効なメールアドレスエラーを生成する。
func NewInvalidEmailError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  fmt.Sprintf("無効なメールアドレスです: %s", reason),
		Category: "validation",
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewCodeMismatchError は認証コード不一致エラーを生成する。
func NewCodeMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeCodeMismatch,
		Message:  "認証コードが一致しないか、有効期限が切れています。",
		Category: "auth",
		Action:   "メールに記載されたコードを確認し、再度お試しください。",
	}
}

// NewEmailNotLinkedError はメール未連携エラーを生成する。
func NewEmailNotLinkedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotLinked,
		Message:  "この機能の利用にはメールアドレスの連携が必要です。",
		Category: "auth",
		Action:   "設定画面からメールアドレスを連携してください。",
	}
}

// NewEmptyContentError は空コンテンツエラーを生成する。
func NewEmptyContentError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyContent,
		Message:  "本文が空です。",
		Category: "validation",
		Action:   "本文を入力してください。",
	}
}

// NewLLMUnavailableError はLLM呼び出し失敗エラーを生成する。
func NewLLMUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeLLMUnavailable,
		Message:  "要約サービスの呼び出しに失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
