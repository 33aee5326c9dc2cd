// Package settings はユーザー設定の取得と保存を提供する。
// 設定はユーザーIDごとに1件で、読み出しはキャッシュ越しに行う。
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/bedrock/internal/cache"
	"github.com/hitoshi/bedrock/internal/model"
	"github.com/hitoshi/bedrock/internal/repository"
)

// Service はユーザー設定サービス。
type Service struct {
	settingRepo repository.UserSettingRepository
	memo        *cache.Cache[string, model.UserSetting] // userID -> setting
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(settingRepo repository.UserSettingRepository, memo *cache.Cache[string, model.UserSetting]) *Service {
	return &Service{
		settingRepo: settingRepo,
		memo:        memo,
		now:         time.Now,
	}
}

// Get はユーザー設定を返す。キャッシュ、ストレージの順に引き、
// どちらにも無ければデフォルト値で作成・永続化して返す。
// 戻り値が設定なしを意味することはない（常にレコードが存在する状態になる）。
// キャッシュには値で格納し、呼び出し元にはコピーを返す。呼び出し元が
// 戻り値を書き換えてもSaveが成功するまでキャッシュには反映されない。
func (s *Service) Get(ctx context.Context, userID string) (*model.UserSetting, error) {
	if cached, ok := s.memo.Get(userID); ok {
		setting := cached
		return &setting, nil
	}

	setting, err := s.settingRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	if setting == nil {
		setting = model.NewDefaultUserSetting(userID)
		setting.UpdatedAt = s.now()
		if err := s.settingRepo.Save(ctx, setting); err != nil {
			return nil, fmt.Errorf("failed to create default setting: %w", err)
		}
	}

	s.memo.Set(userID, *setting)
	return setting, nil
}

// Save はユーザー設定を永続化し、キャッシュも同じ値で更新する。
// ストレージへの書き込みが失敗した場合はキャッシュを触らない。
func (s *Service) Save(ctx context.Context, setting *model.UserSetting) error {
	setting.SchemaVersion = model.SchemaVersionCurrent
	setting.UpdatedAt = s.now()

	if err := s.settingRepo.Save(ctx, setting); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	s.memo.Set(setting.UserID, *setting)
	return nil
}

// SetCurrentProject は現在のプロジェクトのみを更新する。
func (s *Service) SetCurrentProject(ctx context.Context, userID, projectID string) error {
	setting, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	setting.CurrentProjectID = projectID
	return s.Save(ctx, setting)
}

// Invalidate はユーザーのキャッシュエントリを破棄する。
// アカウント引き継ぎ・削除後の読み直しに使用する。
func (s *Service) Invalidate(userID string) {
	s.memo.Remove(userID)
}
