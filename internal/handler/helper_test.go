package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/bedrock/internal/middleware"
)

// withUserID はリクエストコンテキストにユーザーIDを注入する。
func withUserID(req *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithUserID(req.Context(), userID)
	return req.WithContext(ctx)
}

// withDeviceToken はリクエストコンテキストに端末トークンを注入する。
func withDeviceToken(req *http.Request, token string) *http.Request {
	ctx := middleware.ContextWithDeviceToken(req.Context(), token)
	return req.WithContext(ctx)
}

// postJSON はdataModel形式のPOSTリクエストを組み立てる。
func postJSON(t *testing.T, path string, body dataModel) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeBody はレスポンスボディを指定された型にデコードする。
func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Result().Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return v
}
