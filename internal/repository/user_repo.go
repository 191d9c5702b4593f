package repository

import (
	"IdeaVault/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserRepo interface {
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User, profile *model.Profile, settings *model.Settings, membership *model.Membership) error
	UpdateUser(ctx context.Context, id uint64, fields map[string]interface{}) error
	UpdateUserIsBan(ctx context.Context, id uint64, isBan bool) (int64, error)
	ListBots(ctx context.Context) ([]*model.User, error)
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("Profile").
		First(user, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return user, nil
}

func (s *UserRepoImpl) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return user, nil
}

// CreateUser 用户、资料、默认设置与初始会员记录在同一事务内写入
func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User, profile *model.Profile, settings *model.Settings, membership *model.Membership) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Omit("Profile").Create(user); result.Error != nil {
			return result.Error
		}

		profile.UserID = user.ID
		if result := tx.Create(profile); result.Error != nil {
			return result.Error
		}

		if settings != nil {
			settings.UserID = user.ID
			if result := tx.Create(settings); result.Error != nil {
				return result.Error
			}
		}

		if membership != nil {
			membership.UserID = user.ID
			if result := tx.Create(membership); result.Error != nil {
				return result.Error
			}
		}

		user.Profile = *profile
		return nil
	})
}

func (s *UserRepoImpl) UpdateUser(ctx context.Context, id uint64, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (s *UserRepoImpl) UpdateUserIsBan(ctx context.Context, id uint64, isBan bool) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Update("is_ban", isBan)

	return result.RowsAffected, result.Error
}

func (s *UserRepoImpl) ListBots(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := s.db.WithContext(ctx).
		Preload("Profile").
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("profiles.is_bot = ?", true).
		Order("users.id ASC").
		Find(&users).Error
	return users, err
}
