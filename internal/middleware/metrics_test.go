package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordingStatusRecorder はHTTPStatusRecorderのモック実装。
type recordingStatusRecorder struct {
	statusCodes []int
}

func (r *recordingStatusRecorder) RecordHTTPStatus(statusCode int) {
	r.statusCodes = append(r.statusCodes, statusCode)
}

// TestMetricsMiddleware_RecordsStatusCode はレスポンスのステータスコードが記録されることを検証する。
func TestMetricsMiddleware_RecordsStatusCode(t *testing.T) {
	recorder := &recordingStatusRecorder{}

	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if len(recorder.statusCodes) != 1 {
		t.Fatalf("recorded count = %d, want 1", len(recorder.statusCodes))
	}
	if recorder.statusCodes[0] != http.StatusNotFound {
		t.Errorf("status = %d, want %d", recorder.statusCodes[0], http.StatusNotFound)
	}
}

// TestMetricsMiddleware_DefaultsTo200 はWriteHeader未呼び出しの場合に200が記録されることを検証する。
func TestMetricsMiddleware_DefaultsTo200(t *testing.T) {
	recorder := &recordingStatusRecorder{}

	handler := NewMetricsMiddleware(recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if recorder.statusCodes[0] != http.StatusOK {
		t.Errorf("status = %d, want %d", recorder.statusCodes[0], http.StatusOK)
	}
}
