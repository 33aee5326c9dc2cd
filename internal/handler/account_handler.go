package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/bedrock/internal/middleware"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// VerifyAndLink は認証コードを検証し、メールアドレスとユーザーIDを連携する。
	// 既存連携ユーザーへの引き継ぎが起きた場合は transferred = true を返す。
	VerifyAndLink(ctx context.Context, deviceToken, userID, email, code string) (string, bool, error)
	// DisplayID は表示用のユーザーIDを返す。
	DisplayID(ctx context.Context, userID string) (string, error)
	// Delete はアカウントと端末連携を削除する。
	Delete(ctx context.Context, deviceToken, userID string) error
}

// CodeSender は認証コードメールの送信インターフェース。
type CodeSender interface {
	SendCode(ctx context.Context, email string) error
}

// AccountHandler はアカウント連携のHTTPハンドラー。
type AccountHandler struct {
	service AccountServiceInterface
	codes   CodeSender
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface, codes CodeSender) *AccountHandler {
	return &AccountHandler{
		service: service,
		codes:   codes,
	}
}

// SendCode はメールアドレスへ認証コードを送信する。
// POST /api/account/email
func (h *AccountHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	if err := h.codes.SendCode(r.Context(), req.Data); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

// Verify は認証コードを検証し、メールアドレスを連携する。
// data = メールアドレス、content = 認証コード。
// POST /api/account/verify
func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	deviceToken, err := middleware.DeviceTokenFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	req, ok := decodeDataModel(w, r)
	if !ok {
		return
	}

	linkedUserID, transferred, err := h.service.VerifyAndLink(r.Context(), deviceToken, userID, req.Data, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     linkedUserID,
		"transferred": transferred,
	})
}

// ID は表示用のユーザーIDを返す。
// POST /api/account/id
func (h *AccountHandler) ID(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	displayID, err := h.service.DisplayID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": displayID})
}

// Delete はアカウントと端末連携を削除する。
// DELETE /api/account
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	deviceToken, err := middleware.DeviceTokenFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Delete(r.Context(), deviceToken, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
