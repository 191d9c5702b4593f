package repository

import (
	"IdeaVault/internal/model"
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// IdeaQuery 想法列表的过滤条件
type IdeaQuery struct {
	UserID   uint64
	FolderID *uint64
	Drafts   *bool
	Limit    int
	Offset   int
}

type IdeaRepo interface {
	CreateIdea(ctx context.Context, idea *model.Idea) error
	// CreateIdeaWithPost 想法与社区帖子在同一事务内写入
	CreateIdeaWithPost(ctx context.Context, idea *model.Idea, post *model.CommunityPost) error
	// ShareIdea 为已有想法创建社区帖子并置共享标记
	ShareIdea(ctx context.Context, ideaID uint64, post *model.CommunityPost) error
	GetIdea(ctx context.Context, id uint64) (*model.Idea, error)
	GetIdeasByIds(ctx context.Context, ids []uint64) ([]*model.Idea, error)
	ListIdeas(ctx context.Context, q IdeaQuery) ([]*model.Idea, int64, error)
	ListTrash(ctx context.Context, userID uint64, limit, offset int) ([]*model.Idea, error)
	// UpdateIdea 更新想法，共享中的想法同时更新对应帖子，返回被同步的帖子
	UpdateIdea(ctx context.Context, idea *model.Idea, fields map[string]interface{}) ([]*model.CommunityPost, error)
	SoftDeleteIdea(ctx context.Context, userID, id uint64, now time.Time) (int64, error)
	RestoreIdea(ctx context.Context, userID, id uint64) (int64, error)
	// PurgeIdea 仅删除回收站中的想法
	PurgeIdea(ctx context.Context, userID, id uint64) (int64, error)
}

type IdeaRepoImpl struct {
	db *gorm.DB
}

func NewIdeaRepo(db *gorm.DB) IdeaRepo {
	return &IdeaRepoImpl{db: db}
}

func (s *IdeaRepoImpl) CreateIdea(ctx context.Context, idea *model.Idea) error {
	return s.db.WithContext(ctx).Create(idea).Error
}

func (s *IdeaRepoImpl) CreateIdeaWithPost(ctx context.Context, idea *model.Idea, post *model.CommunityPost) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		idea.SharedToCommunity = true
		if err := tx.Create(idea).Error; err != nil {
			return pkgerrors.Wrap(err, "create idea")
		}

		post.SourceIdeaID = &idea.ID
		if err := tx.Omit("Author").Create(post).Error; err != nil {
			return pkgerrors.Wrap(err, "create community post")
		}
		return nil
	})
}

func (s *IdeaRepoImpl) ShareIdea(ctx context.Context, ideaID uint64, post *model.CommunityPost) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post.SourceIdeaID = &ideaID
		if err := tx.Omit("Author").Create(post).Error; err != nil {
			return pkgerrors.Wrap(err, "create community post")
		}
		return tx.Model(&model.Idea{}).Where("id = ?", ideaID).
			Update("shared_to_community", true).Error
	})
}

func (s *IdeaRepoImpl) GetIdea(ctx context.Context, id uint64) (*model.Idea, error) {
	idea := &model.Idea{}
	if err := s.db.WithContext(ctx).First(idea, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return idea, nil
}

func (s *IdeaRepoImpl) GetIdeasByIds(ctx context.Context, ids []uint64) ([]*model.Idea, error) {
	ideas := make([]*model.Idea, 0, len(ids))
	if len(ids) == 0 {
		return ideas, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&ideas).Error
	return ideas, err
}

func (s *IdeaRepoImpl) ListIdeas(ctx context.Context, q IdeaQuery) ([]*model.Idea, int64, error) {
	ideas := make([]*model.Idea, 0)
	tx := s.db.WithContext(ctx).Model(&model.Idea{}).
		Where("user_id = ? AND is_deleted = ?", q.UserID, false)
	if q.FolderID != nil {
		tx = tx.Where("folder_id = ?", *q.FolderID)
	}
	if q.Drafts != nil {
		tx = tx.Where("is_draft = ?", *q.Drafts)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := tx.Order("updated_at DESC").Order("id DESC").
		Limit(q.Limit).Offset(q.Offset).
		Find(&ideas).Error
	return ideas, total, err
}

func (s *IdeaRepoImpl) ListTrash(ctx context.Context, userID uint64, limit, offset int) ([]*model.Idea, error) {
	ideas := make([]*model.Idea, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, true).
		Order("deleted_at DESC").
		Limit(limit).Offset(offset).
		Find(&ideas).Error
	return ideas, err
}

func (s *IdeaRepoImpl) UpdateIdea(ctx context.Context, idea *model.Idea, fields map[string]interface{}) ([]*model.CommunityPost, error) {
	var mirrored []*model.CommunityPost
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(idea).Updates(fields).Error; err != nil {
			return pkgerrors.Wrap(err, "update idea")
		}
		if !idea.SharedToCommunity {
			return nil
		}

		postFields := make(map[string]interface{}, 3)
		for _, col := range []string{"title", "content", "tags"} {
			if v, ok := fields[col]; ok {
				postFields[col] = v
			}
		}
		if len(postFields) == 0 {
			return nil
		}
		if err := tx.Model(&model.CommunityPost{}).
			Where("source_idea_id = ?", idea.ID).
			Updates(postFields).Error; err != nil {
			return pkgerrors.Wrap(err, "mirror idea to post")
		}
		return tx.Where("source_idea_id = ?", idea.ID).Find(&mirrored).Error
	})
	return mirrored, err
}

func (s *IdeaRepoImpl) SoftDeleteIdea(ctx context.Context, userID, id uint64, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now})
	return result.RowsAffected, result.Error
}

func (s *IdeaRepoImpl) RestoreIdea(ctx context.Context, userID, id uint64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Idea{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, true).
		Updates(map[string]interface{}{"is_deleted": false, "deleted_at": nil})
	return result.RowsAffected, result.Error
}

func (s *IdeaRepoImpl) PurgeIdea(ctx context.Context, userID, id uint64) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, true).Delete(&model.Idea{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		if err := tx.Where("idea_id = ?", id).Delete(&model.IdeaLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("idea_id = ?", id).Delete(&model.IdeaComment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.CommunityPost{}).Where("source_idea_id = ?", id).
			Update("source_idea_id", nil).Error; err != nil {
			return err
		}
		return nil
	})
	return affected, err
}
