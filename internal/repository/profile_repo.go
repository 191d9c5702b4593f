package repository

import (
	"IdeaVault/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ProfileRepo interface {
	GetProfile(ctx context.Context, userID uint64) (*model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	GetProfilesByIds(ctx context.Context, userIDs []uint64) (map[uint64]*model.Profile, error)
	UsernameTaken(ctx context.Context, username string, excludeUserID uint64) (bool, error)
	UpdateProfile(ctx context.Context, userID uint64, fields map[string]interface{}) error
}

type ProfileRepoImpl struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &ProfileRepoImpl{db: db}
}

func (s *ProfileRepoImpl) GetProfile(ctx context.Context, userID uint64) (*model.Profile, error) {
	profile := &model.Profile{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileRepoImpl) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := s.db.WithContext(ctx).Where("username = ?", username).First(profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileRepoImpl) GetProfilesByIds(ctx context.Context, userIDs []uint64) (map[uint64]*model.Profile, error) {
	out := make(map[uint64]*model.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []*model.Profile
	if err := s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func (s *ProfileRepoImpl) UsernameTaken(ctx context.Context, username string, excludeUserID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Profile{}).
		Where("username = ? AND user_id <> ?", username, excludeUserID).
		Count(&count).Error
	return count > 0, err
}

func (s *ProfileRepoImpl) UpdateProfile(ctx context.Context, userID uint64, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&model.Profile{}).Where("user_id = ?", userID).Updates(fields).Error
}
