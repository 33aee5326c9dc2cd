// Package identity はデバイストークンからユーザーIDへの解決と
// 初回プロビジョニングを提供する。
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/bedrock/internal/cache"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// Resolver はデバイストークンを安定したユーザーIDへ解決する。
// 未知のトークンには新しいユーザーIDを発行する。
type Resolver struct {
	deviceRepo repository.DeviceIdentityRepository
	memo       *cache.Cache[string, string] // token -> userID
}

// NewResolver はResolverを生成する。
func NewResolver(deviceRepo repository.DeviceIdentityRepository, memo *cache.Cache[string, string]) *Resolver {
	return &Resolver{
		deviceRepo: deviceRepo,
		memo:       memo,
	}
}

// Resolve はデバイストークンをユーザーIDへ解決する。
// 未知のトークンの場合は新しいユーザーIDを発行して紐付けを永続化し、isNew=trueを返す。
// 空文字のトークンも通常のトークンとして扱う（未知なら新規発行）。
//
// 同一の未知トークンによる同時リクエストは条件付きINSERTで直列化される。
// INSERTに敗れた側は勝者の行を読み直し、勝者のユーザーIDをisNew=falseで返すため、
// 1つの物理デバイスに複数のユーザーIDが発行されることはない。
func (r *Resolver) Resolve(ctx context.Context, deviceToken string) (string, bool, error) {
	if userID, ok := r.memo.Get(deviceToken); ok {
		return userID, false, nil
	}

	ident, err := r.deviceRepo.FindByToken(ctx, deviceToken)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve device token: %w", err)
	}
	if ident != nil {
		r.memo.Set(deviceToken, ident.UserID)
		return ident.UserID, false, nil
	}

	newUserID := uuid.New().String()
	created, err := r.deviceRepo.CreateIfAbsent(ctx, &model.DeviceIdentity{
		DeviceToken:   deviceToken,
		UserID:        newUserID,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to create device identity: %w", err)
	}

	if !created {
		// 同時リクエストに敗れた。勝者の紐付けを読み直す。
		winner, err := r.deviceRepo.FindByToken(ctx, deviceToken)
		if err != nil {
			return "", false, fmt.Errorf("failed to re-read device identity: %w", err)
		}
		if winner == nil {
			return "", false, fmt.Errorf("device identity vanished after conflict: %s", deviceToken)
		}
		r.memo.Set(deviceToken, winner.UserID)
		return winner.UserID, false, nil
	}

	r.memo.Set(deviceToken, newUserID)

	slog.Info("new user minted",
		slog.String("user_id", newUserID),
	)

	return newUserID, true, nil
}

// Relink はデバイストークンの指すユーザーを付け替える。
// メール連携によるアカウント引き継ぎで使用し、メモのエントリも更新する。
func (r *Resolver) Relink(ctx context.Context, deviceToken, userID string) error {
	if err := r.deviceRepo.Upsert(ctx, &model.DeviceIdentity{
		DeviceToken:   deviceToken,
		UserID:        userID,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to relink device token: %w", err)
	}

	r.memo.Set(deviceToken, userID)
	return nil
}

// Forget はデバイストークンの紐付けを削除し、メモのエントリも破棄する。
// アカウント削除で使用する。
func (r *Resolver) Forget(ctx context.Context, deviceToken string) error {
	if err := r.deviceRepo.DeleteByToken(ctx, deviceToken); err != nil {
		return fmt.Errorf("failed to forget device token: %w", err)
	}

	r.memo.Remove(deviceToken)
	return nil
}
