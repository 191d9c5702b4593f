package repository

import (
	"IdeaVault/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepo interface {
	GetSettings(ctx context.Context, userID uint64) (*model.Settings, error)
	UpsertSettings(ctx context.Context, settings *model.Settings) error
}

type SettingsRepoImpl struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &SettingsRepoImpl{db: db}
}

func (s *SettingsRepoImpl) GetSettings(ctx context.Context, userID uint64) (*model.Settings, error) {
	settings := &model.Settings{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return settings, nil
}

// settingsColumns 冲突时整行覆盖的列，false 也必须写入
var settingsColumns = []string{
	"theme", "language",
	"email_notifications", "push_notifications",
	"notify_on_like", "notify_on_comment", "notify_on_collab_request",
	"updated_at",
}

// UpsertSettings 按 user_id 主键插入或整行覆盖
func (s *SettingsRepoImpl) UpsertSettings(ctx context.Context, settings *model.Settings) error {
	return s.db.WithContext(ctx).
		Select("*").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(settingsColumns),
		}).
		Create(settings).Error
}
