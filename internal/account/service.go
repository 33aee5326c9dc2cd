// Package account はメール連携によるアカウントの引き継ぎと削除を提供する。
package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/bedrock/internal/mail"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// displayIDLength はメール未連携ユーザーの表示IDの文字数。
const displayIDLength = 8

// codeVerifier は認証コードの検証操作。
type codeVerifier interface {
	VerifyCode(ctx context.Context, email, code string) error
}

// deviceResolver はデバイストークンの付け替え・削除操作。
type deviceResolver interface {
	Relink(ctx context.Context, deviceToken, userID string) error
	Forget(ctx context.Context, deviceToken string) error
}

// settingsInvalidator は設定キャッシュの破棄操作。
type settingsInvalidator interface {
	Invalidate(userID string)
}

// Service はアカウントサービス。
type Service struct {
	emailRepo repository.EmailIdentityRepository
	codes     codeVerifier
	resolver  deviceResolver
	settings  settingsInvalidator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	emailRepo repository.EmailIdentityRepository,
	codes codeVerifier,
	resolver deviceResolver,
	settings settingsInvalidator,
	logger *slog.Logger,
) *Service {
	return &Service{
		emailRepo: emailRepo,
		codes:     codes,
		resolver:  resolver,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// VerifyAndLink は認証コードを検証し、メールアドレスをアカウントに連携する。
//
// メールアドレスが未連携の場合は現在のユーザーに紐付ける。
// 既に別のユーザーに連携済みの場合はアカウント引き継ぎとして扱い、
// デバイストークンをそのユーザーへ付け替える（以降このデバイスは
// 引き継ぎ先のユーザーとして動作する）。
// 戻り値は連携後にこのデバイスが指すユーザーIDと、引き継ぎが発生したかどうか。
func (s *Service) VerifyAndLink(ctx context.Context, deviceToken, userID, email, code string) (string, bool, error) {
	email, err := mail.NormalizeEmail(email)
	if err != nil {
		return "", false, err
	}
	if err := s.codes.VerifyCode(ctx, email, code); err != nil {
		return "", false, err
	}

	existing, err := s.emailRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", false, fmt.Errorf("メール紐付けの取得に失敗しました: %w", err)
	}

	if existing != nil && existing.UserID != userID {
		// アカウント引き継ぎ。デバイスを連携済みユーザーへ付け替える。
		if err := s.resolver.Relink(ctx, deviceToken, existing.UserID); err != nil {
			return "", false, err
		}
		s.settings.Invalidate(userID)
		s.settings.Invalidate(existing.UserID)

		s.logger.Info("アカウントを引き継ぎました",
			slog.String("from_user_id", userID),
			slog.String("to_user_id", existing.UserID),
		)
		return existing.UserID, true, nil
	}

	if err := s.emailRepo.Upsert(ctx, &model.EmailIdentity{
		Email:         email,
		UserID:        userID,
		SchemaVersion: model.SchemaVersionCurrent,
		CreatedAt:     s.now(),
	}); err != nil {
		return "", false, fmt.Errorf("メール紐付けの保存に失敗しました: %w", err)
	}
	return userID, false, nil
}

// DisplayID はユーザーの表示用IDを返す。
// メール連携済みならそのアドレス、未連携ならユーザーIDの短いハッシュを返す。
func (s *Service) DisplayID(ctx context.Context, userID string) (string, error) {
	ident, err := s.emailRepo.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("メール紐付けの取得に失敗しました: %w", err)
	}
	if ident != nil {
		return ident.Email, nil
	}

	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])[:displayIDLength], nil
}

// Delete はアカウントを削除する。
// メール紐付けとデバイス紐付けを削除し、設定キャッシュを破棄する。
// プロジェクト・タスクの行は残るが、トークンからは到達できなくなる。
func (s *Service) Delete(ctx context.Context, deviceToken, userID string) error {
	if err := s.emailRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("メール紐付けの削除に失敗しました: %w", err)
	}
	if err := s.resolver.Forget(ctx, deviceToken); err != nil {
		return err
	}
	s.settings.Invalidate(userID)

	s.logger.Info("アカウントを削除しました",
		slog.String("user_id", userID),
	)
	return nil
}
