package repository

import (
	"IdeaVault/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type FolderRepo interface {
	CreateFolder(ctx context.Context, folder *model.Folder) error
	GetFolder(ctx context.Context, id uint64) (*model.Folder, error)
	ListFolders(ctx context.Context, userID uint64) ([]*model.Folder, error)
	RenameFolder(ctx context.Context, userID, id uint64, name string) (int64, error)
	// DeleteFolder 删除文件夹，其中的想法回落到未归档
	DeleteFolder(ctx context.Context, userID, id uint64) (int64, error)
}

type FolderRepoImpl struct {
	db *gorm.DB
}

func NewFolderRepo(db *gorm.DB) FolderRepo {
	return &FolderRepoImpl{db: db}
}

func (s *FolderRepoImpl) CreateFolder(ctx context.Context, folder *model.Folder) error {
	return s.db.WithContext(ctx).Create(folder).Error
}

func (s *FolderRepoImpl) GetFolder(ctx context.Context, id uint64) (*model.Folder, error) {
	folder := &model.Folder{}
	if err := s.db.WithContext(ctx).First(folder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return folder, nil
}

func (s *FolderRepoImpl) ListFolders(ctx context.Context, userID uint64) ([]*model.Folder, error) {
	folders := make([]*model.Folder, 0)
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&folders).Error
	return folders, err
}

func (s *FolderRepoImpl) RenameFolder(ctx context.Context, userID, id uint64, name string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	return result.RowsAffected, result.Error
}

func (s *FolderRepoImpl) DeleteFolder(ctx context.Context, userID, id uint64) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Folder{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.Model(&model.Idea{}).
			Where("folder_id = ? AND user_id = ?", id, userID).
			Update("folder_id", nil).Error
	})
	return affected, err
}
