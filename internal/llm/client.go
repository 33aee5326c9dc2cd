// Package llm はテキスト生成APIのクライアントを提供する。
// 日記の要約と秘書レポートの生成に使用する。
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Client はプロンプトを投げてテキストを受け取るクライアントのインターフェース。
type Client interface {
	// Complete はプロンプトに対する生成テキストを返す。
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient はOpenAI Chat Completions APIのクライアント。
type OpenAIClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	model      string
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient はOpenAIClientの新しいインスタンスを生成する。
func NewOpenAIClient(httpClient *http.Client, logger *slog.Logger, apiKey, model, baseURL string) *OpenAIClient {
	return &OpenAIClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete はChat Completions APIを1回呼び出し、先頭の生成テキストを返す。
// リトライは行わない（呼び出し元が失敗時の扱いを判断する）。
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	// リクエストボディ構築
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	// HTTPリクエスト作成
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	// HTTPリクエスト実行
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("テキスト生成APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("model", c.model),
		)
		return "", err
	}
	defer resp.Body.Close()

	// HTTPステータスチェック
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("テキスト生成APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("model", c.model),
		)
		return "", fmt.Errorf("テキスト生成APIがステータス %d を返しました", resp.StatusCode)
	}

	// レスポンスボディ読み取り
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	// JSONデコード
	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("テキスト生成APIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("テキスト生成APIのレスポンスに生成結果が含まれていません")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
