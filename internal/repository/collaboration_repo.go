package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CollaborationRepo interface {
	CreateRequest(ctx context.Context, req *model.CollaborationRequest) error
	GetRequest(ctx context.Context, id uint64) (*model.CollaborationRequest, error)
	HasPending(ctx context.Context, requesterID, postID uint64) (bool, error)
	ListIncoming(ctx context.Context, ownerID uint64, status string, limit, offset int) ([]*model.CollaborationRequest, error)
	ListOutgoing(ctx context.Context, requesterID uint64, limit, offset int) ([]*model.CollaborationRequest, error)
	// FinalizeRequest 仅当状态仍为 pending 时更新，返回受影响行数
	FinalizeRequest(ctx context.Context, id, ownerID uint64, status string) (int64, error)
}

type CollaborationRepoImpl struct {
	db *gorm.DB
}

func NewCollaborationRepo(db *gorm.DB) CollaborationRepo {
	return &CollaborationRepoImpl{db: db}
}

// CreateRequest 已存在待处理申请时返回 ErrDuplicate
func (s *CollaborationRepoImpl) CreateRequest(ctx context.Context, req *model.CollaborationRequest) error {
	if req.Status == consts.CollabPending {
		req.PendingKey = model.CollabPendingKey(req.RequesterID, req.PostID)
	}
	if err := s.db.WithContext(ctx).Omit("Post").Create(req).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *CollaborationRepoImpl) GetRequest(ctx context.Context, id uint64) (*model.CollaborationRequest, error) {
	req := &model.CollaborationRequest{}
	if err := s.db.WithContext(ctx).Preload("Post").First(req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

func (s *CollaborationRepoImpl) HasPending(ctx context.Context, requesterID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CollaborationRequest{}).
		Where("requester_id = ? AND post_id = ? AND status = ?", requesterID, postID, consts.CollabPending).
		Count(&count).Error
	return count > 0, err
}

func (s *CollaborationRepoImpl) ListIncoming(ctx context.Context, ownerID uint64, status string, limit, offset int) ([]*model.CollaborationRequest, error) {
	reqs := make([]*model.CollaborationRequest, 0)
	tx := s.db.WithContext(ctx).Preload("Post").Where("owner_id = ?", ownerID)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	err := tx.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&reqs).Error
	return reqs, err
}

func (s *CollaborationRepoImpl) ListOutgoing(ctx context.Context, requesterID uint64, limit, offset int) ([]*model.CollaborationRequest, error) {
	reqs := make([]*model.CollaborationRequest, 0)
	err := s.db.WithContext(ctx).Preload("Post").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&reqs).Error
	return reqs, err
}

func (s *CollaborationRepoImpl) FinalizeRequest(ctx context.Context, id, ownerID uint64, status string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.CollaborationRequest{}).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, consts.CollabPending).
		Updates(map[string]interface{}{"status": status, "pending_key": nil})
	return result.RowsAffected, result.Error
}
