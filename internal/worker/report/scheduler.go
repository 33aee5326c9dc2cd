// Package report は秘書レポートのバックグラウンド更新処理を提供する。
// ティッカーで対象ユーザーを取得し、semaphoreパターンで並列数を
// 制御しながらレポートを再生成する。
package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/bedrock/internal/repository"
)

// RefresherService はレポート再生成の実行インターフェース。
type RefresherService interface {
	// Refresh は指定ユーザーのレポートを必要に応じて再生成する。
	Refresh(ctx context.Context, userID string) error
}

// Scheduler は秘書レポート更新のスケジューリングと並列制御を行う。
type Scheduler struct {
	secretaryRepo  repository.SecretaryRepository
	refresher      RefresherService
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。
func NewScheduler(
	secretaryRepo repository.SecretaryRepository,
	refresher RefresherService,
	logger *slog.Logger,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Scheduler{
		secretaryRepo:  secretaryRepo,
		refresher:      refresher,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("レポート更新スケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("レポート更新サイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("レポート更新スケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("レポート更新サイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce は対象ユーザーを1回取得し、並列でレポート更新を実行する。
// 更新が必要かどうかの判定（前回更新からの経過時間）はRefresher側で行う。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	userIDs, err := s.secretaryRepo.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	if len(userIDs) == 0 {
		s.logger.Info("レポート更新対象のユーザーはいません")
		return nil
	}

	s.logger.Info("レポート更新サイクルを開始します",
		slog.Int("user_count", len(userIDs)),
	)

	// semaphoreパターンで並列数を制御
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, userID := range userIDs {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			if err := s.refresher.Refresh(ctx, id); err != nil {
				s.logger.Error("レポート更新に失敗しました",
					slog.String("user_id", id),
					slog.String("error", err.Error()),
				)
			}
		}(userID)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("レポート更新サイクルが完了しました",
		slog.Int("user_count", len(userIDs)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
