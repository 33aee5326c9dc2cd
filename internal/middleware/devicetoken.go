// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// deviceTokenHeader はデバイストークンを運ぶリクエストヘッダー。
const deviceTokenHeader = "X-Device-Token"

// deviceTokenCookieName はデバイストークンを運ぶCookie名。
const deviceTokenCookieName = "device_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// deviceTokenContextKey はリクエストコンテキストにデバイストークンを格納するためのキー。
var deviceTokenContextKey = contextKey("device_token")

// IdentityResolver はデバイストークンの解決に必要なインターフェース。
type IdentityResolver interface {
	Resolve(ctx context.Context, deviceToken string) (userID string, isNew bool, err error)
}

// Provisioner は新規ユーザーの初期データ作成に必要なインターフェース。
type Provisioner interface {
	Provision(ctx context.Context, userID string) (firstProjectID string, err error)
}

// NewDeviceTokenMiddleware はデバイストークンをユーザーIDへ解決するミドルウェアを返す。
// トークンはヘッダー、Cookie、クエリパラメータの順に探す。
// 未知のトークンには新しいユーザーIDを発行し、初期データを作成する。
// 空トークンも通常のトークンとして扱うため、このミドルウェアが401を返すことはない。
// 解決済みユーザーIDとトークンをリクエストコンテキストに注入する。
func NewDeviceTokenMiddleware(resolver IdentityResolver, provisioner Provisioner) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. リクエストからデバイストークンを取得
			token := deviceTokenFromRequest(r)

			// 2. トークンをユーザーIDへ解決
			userID, isNew, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				slog.Error("デバイストークンの解決に失敗しました",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			// 3. 新規ユーザーには初期データを払い出す
			if isNew {
				if _, err := provisioner.Provision(r.Context(), userID); err != nil {
					slog.Error("初期データの作成に失敗しました",
						slog.String("user_id", userID),
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
			}

			// 4. 解決結果をコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			ctx = context.WithValue(ctx, deviceTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// deviceTokenFromRequest はヘッダー、Cookie、クエリの順にトークンを探す。
// どこにも無い場合は空文字を返す（空トークンも有効なトークンとして扱われる）。
func deviceTokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(deviceTokenHeader); token != "" {
		return token
	}
	if cookie, err := r.Cookie(deviceTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.URL.Query().Get("device_id")
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// デバイストークンミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// DeviceTokenFromContext はリクエストコンテキストからデバイストークンを取得する。
// 空トークンは有効な値のため、キーの有無のみを検査する。
func DeviceTokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(deviceTokenContextKey).(string)
	if !ok {
		return "", fmt.Errorf("device token not found in context")
	}
	return token, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// ContextWithDeviceToken はコンテキストにデバイストークンを注入する。テスト用。
func ContextWithDeviceToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, deviceTokenContextKey, token)
}
