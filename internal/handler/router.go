package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/bedrock/internal/metrics"
	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/render"
)

// HealthChecker はデータベース疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	IdentityResolver  middleware.IdentityResolver
	Provisioner       middleware.Provisioner
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 監視
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer
	StatusRecorder  middleware.HTTPStatusRecorder

	// ドメインサービス
	ProjectService   ProjectServiceInterface
	ContentService   ContentServiceInterface
	DiaryService     DiaryServiceInterface
	SecretaryService SecretaryServiceInterface
	SettingsService  SettingsServiceInterface
	AccountService   AccountServiceInterface
	CodeSender       CodeSender
	DiaryOpener      DiaryOpener
	ContentLister    ContentLister

	// 描画
	Renderer *render.Renderer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → SecurityHeadersMiddleware → LoggingMiddleware
//	→ MetricsMiddleware → DeviceTokenMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// /health と /metrics はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}

	projectHandler := NewProjectHandler(deps.ProjectService, deps.Renderer)
	contentHandler := NewContentHandler(deps.ContentService, deps.SettingsService, deps.Renderer)
	viewHandler := NewViewHandler(deps.ProjectService, deps.ContentLister, deps.DiaryOpener, deps.SettingsService, deps.Renderer)
	diaryHandler := NewDiaryHandler(deps.DiaryService, deps.ProjectService, deps.Renderer)
	secretaryHandler := NewSecretaryHandler(deps.SecretaryService)
	settingsHandler := NewSettingsHandler(deps.SettingsService)
	accountHandler := NewAccountHandler(deps.AccountService, deps.CodeSender)

	// --- 端末識別が不要なルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 端末識別が必要なルート ---
	// ミドルウェアスタック: DeviceToken → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewDeviceTokenMiddleware(deps.IdentityResolver, deps.Provisioner))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロジェクト管理
		r.Route("/api/projects", func(r chi.Router) {
			r.Post("/", projectHandler.CreateTask)
			r.Post("/diary", projectHandler.CreateDiary)
			r.Post("/change", projectHandler.Change)
			r.Post("/name", projectHandler.Name)
			r.Post("/rename", projectHandler.Rename)
			r.Post("/archive", projectHandler.Archive)
			r.Post("/list", projectHandler.List)
			r.Post("/recent", projectHandler.Recent)
		})

		// タスクコンテンツ
		r.Route("/api/contents", func(r chi.Router) {
			r.Post("/", contentHandler.Write)
			r.Post("/done", contentHandler.ToggleDone)
			r.Post("/count", contentHandler.Count)
		})

		// ビュー断片
		r.Route("/api/view", func(r chi.Router) {
			r.Post("/full", viewHandler.Full)
			r.Post("/task", viewHandler.GoToTask)
		})

		// 日記
		r.Route("/api/diary", func(r chi.Router) {
			r.Post("/", diaryHandler.Save)
			r.Post("/list", diaryHandler.List)
		})

		// 秘書レポート
		r.Post("/api/secretary", secretaryHandler.Report)

		// ユーザー設定
		r.Route("/api/settings", func(r chi.Router) {
			r.Post("/show-date", settingsHandler.ToggleShowDate)
			r.Post("/show-done", settingsHandler.ToggleShowDone)
		})

		// アカウント連携
		r.Route("/api/account", func(r chi.Router) {
			// POST /api/account/email - 認証コード送信（送信専用レート制限を追加）
			r.With(deps.RateLimiter.EmailMiddleware()).Post("/email", accountHandler.SendCode)
			r.Post("/verify", accountHandler.Verify)
			r.Post("/id", accountHandler.ID)
			r.Delete("/", accountHandler.Delete)
		})
	})

	return r
}

// NewHealthHandler はデータベース疎通を確認するヘルスチェックハンドラーを返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
