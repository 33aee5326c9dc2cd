// Package cleanup はメール認証コードの自動削除ジョブを提供する。
// 発行から保持期間（デフォルト24時間）を超過した認証コードを
// 日次バッチで削除する。期限切れコードは検証時にも拒否されるため、
// このジョブは行の掃除のみを担う。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/bedrock/internal/repository"
)

// CleanupJob は期限切れ認証コードの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	codeRepo  repository.EmailCodeRepository
	logger    *slog.Logger
	Retention time.Duration // コードの保持期間（デフォルト: 24時間）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持期間は24時間。
func NewCleanupJob(codeRepo repository.EmailCodeRepository, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		codeRepo:  codeRepo,
		logger:    logger,
		Retention: 24 * time.Hour,
	}
}

// Run は保持期間を超過した認証コードを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := start.Add(-j.Retention)
	deletedCount, err := j.codeRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("認証コードクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("retention", j.Retention),
		)
		return fmt.Errorf("認証コードクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("認証コードクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Duration("retention", j.Retention),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
