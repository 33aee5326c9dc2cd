package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/bedrock/internal/account"
	"github.com/hitoshi/bedrock/internal/cache"
	"github.com/hitoshi/bedrock/internal/config"
	"github.com/hitoshi/bedrock/internal/content"
	"github.com/hitoshi/bedrock/internal/database"
	"github.com/hitoshi/bedrock/internal/diary"
	"github.com/hitoshi/bedrock/internal/handler"
	"github.com/hitoshi/bedrock/internal/identity"
	"github.com/hitoshi/bedrock/internal/llm"
	"github.com/hitoshi/bedrock/internal/logger"
	"github.com/hitoshi/bedrock/internal/mail"
	"github.com/hitoshi/bedrock/internal/metrics"
	"github.com/hitoshi/bedrock/internal/middleware"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/project"
	"github.com/hitoshi/bedrock/internal/render"
	"github.com/hitoshi/bedrock/internal/repository"
	"github.com/hitoshi/bedrock/internal/secretary"
	"github.com/hitoshi/bedrock/internal/settings"
	"github.com/hitoshi/bedrock/internal/worker/cleanup"
	"github.com/hitoshi/bedrock/internal/worker/report"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	deviceRepo := repository.NewPostgresDeviceIdentityRepo(db)
	provisionRepo := repository.NewPostgresProvisionRepo(db)
	settingRepo := repository.NewPostgresUserSettingRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	contentRepo := repository.NewPostgresContentRepo(db)
	diaryRepo := repository.NewPostgresDiaryRepo(db)
	emailCodeRepo := repository.NewPostgresEmailCodeRepo(db)
	emailIdentityRepo := repository.NewPostgresEmailIdentityRepo(db)
	secretaryRepo := repository.NewPostgresSecretaryRepo(db)

	// 4. プロセスローカルキャッシュの初期化
	identityCache, err := cache.NewObserved[string, string](cfg.IdentityCacheSize, "identity", collector)
	if err != nil {
		return fmt.Errorf("failed to create identity cache: %w", err)
	}
	settingsCache, err := cache.NewObserved[string, model.UserSetting](cfg.SettingsCacheSize, "settings", collector)
	if err != nil {
		return fmt.Errorf("failed to create settings cache: %w", err)
	}

	// 5. ドメインサービスの初期化
	resolver := identity.NewResolver(deviceRepo, identityCache)
	provisioner := &mintedProvisioner{
		inner:   identity.NewProvisioner(provisionRepo),
		metrics: collector,
	}

	settingsService := settings.NewService(settingRepo, settingsCache)
	projectService := project.NewService(projectRepo, settingsService)
	contentService := content.NewService(contentRepo, projectService)

	httpClient := &http.Client{Timeout: cfg.OpenAITimeout}
	openAIClient := llm.NewOpenAIClient(httpClient, slog.Default(), cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	summaryLLM := llm.NewInstrumentedClient(openAIClient, collector, "summary")

	diaryService := diary.NewService(diaryRepo, projectService, summaryLLM, slog.Default())

	mailSender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, slog.Default())
	codeService := mail.NewCodeService(emailCodeRepo, mailSender, cfg.EmailCodeTTL)

	accountService := account.NewService(emailIdentityRepo, codeService, resolver, settingsService, slog.Default())

	renderer := render.NewRenderer()

	reportLLM := llm.NewInstrumentedClient(openAIClient, collector, "report")
	secretaryService := secretary.NewService(
		secretaryRepo, emailIdentityRepo, projectRepo, contentRepo, diaryRepo,
		reportLLM, renderer, cfg.SecretaryRefreshInterval, slog.Default(),
	)

	// 6. ルーターの構築
	rateLimiterCfg := rateLimiterConfigFrom(cfg)

	deps := &handler.RouterDeps{
		IdentityResolver:  resolver,
		Provisioner:       provisioner,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       middleware.NewRateLimiter(rateLimiterCfg),

		HealthChecker:   db,
		MetricsGatherer: registry,
		StatusRecorder:  collector,

		ProjectService:   projectService,
		ContentService:   contentService,
		DiaryService:     diaryService,
		SecretaryService: secretaryService,
		SettingsService:  settingsService,
		AccountService:   accountService,
		CodeSender:       codeService,
		DiaryOpener:      diaryService,
		ContentLister:    contentService,

		Renderer: renderer,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、秘書レポートの更新スケジューラと認証コードの
// クリーンアップジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	secretaryRepo := repository.NewPostgresSecretaryRepo(db)
	emailIdentityRepo := repository.NewPostgresEmailIdentityRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	contentRepo := repository.NewPostgresContentRepo(db)
	diaryRepo := repository.NewPostgresDiaryRepo(db)
	emailCodeRepo := repository.NewPostgresEmailCodeRepo(db)

	// 4. 秘書レポートサービスの初期化
	httpClient := &http.Client{Timeout: cfg.OpenAITimeout}
	openAIClient := llm.NewOpenAIClient(httpClient, slog.Default(), cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	reportLLM := llm.NewInstrumentedClient(openAIClient, collector, "report")

	secretaryService := secretary.NewService(
		secretaryRepo, emailIdentityRepo, projectRepo, contentRepo, diaryRepo,
		reportLLM, render.NewRenderer(), cfg.SecretaryRefreshInterval, slog.Default(),
	)

	refresher := &observedRefresher{
		inner:   secretaryService,
		metrics: collector,
	}

	// 5. スケジューラの初期化
	scheduler := report.NewScheduler(secretaryRepo, refresher, slog.Default(), 0)

	// 6. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(emailCodeRepo, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("tick_interval", cfg.SecretaryTickInterval),
		slog.Duration("refresh_interval", cfg.SecretaryRefreshInterval),
	)

	// ワーカーのヘルスチェックとメトリクスを公開する軽量HTTPサーバー
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handler.NewHealthHandler(db))
	mux.Handle("/metrics", metrics.Handler(registry))
	workerServer := &http.Server{Addr: ":" + cfg.ServerPort, Handler: mux}
	go func() {
		if err := workerServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker http server error", slog.String("error", err.Error()))
		}
	}()

	// クリーンアップジョブを日次でバックグラウンド実行
	go func() {
		// 起動直後に1回実行
		if err := cleanupJob.Run(ctx); err != nil {
			slog.Error("cleanup job failed", slog.String("error", err.Error()))
		}

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := cleanupJob.Run(ctx); err != nil {
					slog.Error("cleanup job failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	// レポート更新スケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.SecretaryTickInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	workerServer.Shutdown(shutdownCtx)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

// rateLimiterConfigFrom は設定からレート制限設定を組み立てる。
// RATE_LIMIT_GENERALはreq/min単位なのでreq/secに変換し、バーストは1分相当とする。
func rateLimiterConfigFrom(cfg *config.Config) middleware.RateLimiterConfig {
	limiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		limiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		limiterCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	return limiterCfg
}

// mintedProvisioner はProvisionerをラップし、新規ユーザーの発行をメトリクスに記録する。
type mintedProvisioner struct {
	inner   *identity.Provisioner
	metrics metrics.MetricsCollector
}

func (p *mintedProvisioner) Provision(ctx context.Context, userID string) (string, error) {
	firstProjectID, err := p.inner.Provision(ctx, userID)
	if err == nil {
		p.metrics.RecordUserMinted()
	}
	return firstProjectID, err
}

// observedRefresher はRefresherServiceをラップし、レポート更新をメトリクスに記録する。
type observedRefresher struct {
	inner   *secretary.Service
	metrics metrics.MetricsCollector
}

func (r *observedRefresher) Refresh(ctx context.Context, userID string) error {
	err := r.inner.Refresh(ctx, userID)
	if err == nil {
		r.metrics.RecordReportRefreshed()
	}
	return err
}
