package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestOpenAIClient_Complete(t *testing.T) {
	// テスト用HTTPサーバー: 生成テキストを1件返す
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("パス = %s, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %s, want Bearer test-key", auth)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("リクエストボディのデコードに失敗した: %v", err)
		}
		if req.Model != "o1-mini" {
			t.Errorf("モデル = %s, want o1-mini", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "今日の日記を要約して" {
			t.Errorf("メッセージが想定と異なる: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  良い一日だった。  "}},
			},
		})
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewOpenAIClient(server.Client(), newTestLogger(&buf), "test-key", "o1-mini", server.URL)

	got, err := c.Complete(context.Background(), "今日の日記を要約して")
	if err != nil {
		t.Fatalf("Complete がエラーを返した: %v", err)
	}
	if got != "良い一日だった。" {
		t.Errorf("生成テキスト = %q, want 良い一日だった。", got)
	}
}

func TestOpenAIClient_Complete_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewOpenAIClient(server.Client(), newTestLogger(&buf), "test-key", "o1-mini", server.URL)

	_, err := c.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("HTTPエラー時にエラーが返されるべき")
	}
	if !strings.Contains(buf.String(), "ERROR") {
		t.Errorf("APIエラー時にERRORレベルのログが記録されるべき: %s", buf.String())
	}
}

func TestOpenAIClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewOpenAIClient(server.Client(), newTestLogger(&buf), "test-key", "o1-mini", server.URL)

	_, err := c.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("生成結果が空のときエラーが返されるべき")
	}
}

func TestOpenAIClient_Complete_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewOpenAIClient(server.Client(), newTestLogger(&buf), "test-key", "o1-mini", server.URL)

	_, err := c.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("不正JSONレスポンス時にエラーが返されるべき")
	}
}

func TestOpenAIClient_Complete_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewOpenAIClient(server.Client(), newTestLogger(&buf), "test-key", "o1-mini", server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // 即座にキャンセル

	_, err := c.Complete(ctx, "prompt")
	if err == nil {
		t.Fatal("キャンセルされたコンテキストでエラーが返されるべき")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("context.Canceled エラーであるべき: got %v", err)
	}
}
