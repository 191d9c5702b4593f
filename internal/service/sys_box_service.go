package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	"errors"
)

const maxNotificationPageSize = 100

type SysBoxService interface {
	ListNotifications(ctx context.Context, userID uint64, filter mongo.NotificationFilter, page, pageSize int) ([]*dto.NotificationDTO, error)
	UnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error)
	MarkRead(ctx context.Context, userID uint64, msgID string) error
	MarkAllRead(ctx context.Context, userID uint64) (*dto.MarkAllReadDTO, error)
	DeleteNotification(ctx context.Context, userID uint64, msgID string) error
}

type sysBoxServiceImpl struct {
	sysBoxRepo  mongo.SysBoxRepo
	profileRepo repository.ProfileRepo
}

func NewSysBoxService(sysBox mongo.SysBoxRepo, profileRepo repository.ProfileRepo) SysBoxService {
	return &sysBoxServiceImpl{
		sysBoxRepo:  sysBox,
		profileRepo: profileRepo,
	}
}

// ListNotifications 批量补全发送者资料，系统通知没有 sender
func (s *sysBoxServiceImpl) ListNotifications(ctx context.Context, userID uint64, filter mongo.NotificationFilter, page, pageSize int) ([]*dto.NotificationDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	limit, offset := util.Paginate(page, pageSize, maxNotificationPageSize)
	list, err := s.sysBoxRepo.ListNotifications(ctx, userID, filter, int64(limit), int64(offset))
	if err != nil {
		return nil, err
	}

	senderIDs := make([]uint64, 0, len(list))
	for _, m := range list {
		if m.SenderID > 0 {
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	profiles, err := s.profileRepo.GetProfilesByIds(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, m := range list {
		res = append(res, &dto.NotificationDTO{
			ID:        m.ID.Hex(),
			Type:      m.Type,
			Sender:    toAuthorDTO(profiles[m.SenderID]),
			TargetID:  m.TargetID,
			Content:   m.Content,
			Payload:   m.Payload,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt.UTC(),
		})
	}
	return res, nil
}

func (s *sysBoxServiceImpl) UnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	count, err := s.sysBoxRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountDTO{UnreadCount: count}, nil
}

func (s *sysBoxServiceImpl) MarkRead(ctx context.Context, userID uint64, msgID string) error {
	if userID == 0 {
		return ErrAuthRequired
	}
	return mapSysBoxErr(s.sysBoxRepo.MarkRead(ctx, userID, msgID))
}

func (s *sysBoxServiceImpl) MarkAllRead(ctx context.Context, userID uint64) (*dto.MarkAllReadDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	n, err := s.sysBoxRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.MarkAllReadDTO{Updated: n}, nil
}

// DeleteNotification 只能删除自己的通知
func (s *sysBoxServiceImpl) DeleteNotification(ctx context.Context, userID uint64, msgID string) error {
	if userID == 0 {
		return ErrAuthRequired
	}
	return mapSysBoxErr(s.sysBoxRepo.DeleteNotification(ctx, userID, msgID))
}

func mapSysBoxErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrInvalidID):
		return ErrParamInvalid
	case errors.Is(err, mongo.ErrNotFound):
		return ErrSysBoxNotFound
	}
	return err
}
