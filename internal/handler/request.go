// Package handler はBedrockのHTTP APIハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bedrock/internal/model"
)

// dataModel は全POSTエンドポイント共通のリクエストボディ。
// device_idはミドルウェアでの解決が主経路のため、ボディ側は互換目的で受け付ける。
type dataModel struct {
	DeviceID string `json:"device_id"`
	Data     string `json:"data"`
	Content  string `json:"content"`
	Depth    int    `json:"depth"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// decodeDataModel はリクエストボディをdataModelとして解析する。
// 解析に失敗した場合はエラーレスポンスを書き込み、falseを返す。
func decodeDataModel(w http.ResponseWriter, r *http.Request) (*dataModel, bool) {
	var req dataModel
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return nil, false
	}
	return &req, true
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeUnauthorized は認証切れのエラーレスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "端末の識別に失敗しました。",
		Category: "auth",
		Action:   "アプリを再起動してください。",
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeProjectNotFound, model.ErrCodeContentNotFound:
		return http.StatusNotFound
	case model.ErrCodeNoCurrentProject:
		return http.StatusConflict
	case model.ErrCodeInvalidEmail, model.ErrCodeEmptyContent:
		return http.StatusBadRequest
	case model.ErrCodeCodeMismatch:
		return http.StatusUnauthorized
	case model.ErrCodeEmailNotLinked:
		return http.StatusForbidden
	case model.ErrCodeLLMUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
