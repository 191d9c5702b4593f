package repository

import (
	"IdeaVault/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ThreadSummary 收件箱中的一个会话
type ThreadSummary struct {
	Latest *model.Message
	Unread int64
}

type MessageRepo interface {
	// CreateMessage 新会话以首条消息 ID 作为 thread_id
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessage(ctx context.Context, id uint64) (*model.Message, error)
	ListInbox(ctx context.Context, userID uint64, limit, offset int) ([]*ThreadSummary, error)
	GetThread(ctx context.Context, threadID uint64) ([]*model.Message, error)
	MarkRead(ctx context.Context, userID, messageID uint64) (int64, error)
	MarkThreadRead(ctx context.Context, userID, threadID uint64) (int64, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type MessageRepoImpl struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &MessageRepoImpl{db: db}
}

func (s *MessageRepoImpl) CreateMessage(ctx context.Context, msg *model.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		if msg.ThreadID != 0 {
			return nil
		}
		msg.ThreadID = msg.ID
		return tx.Model(msg).Update("thread_id", msg.ID).Error
	})
}

func (s *MessageRepoImpl) GetMessage(ctx context.Context, id uint64) (*model.Message, error) {
	msg := &model.Message{}
	if err := s.db.WithContext(ctx).First(msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

func (s *MessageRepoImpl) ListInbox(ctx context.Context, userID uint64, limit, offset int) ([]*ThreadSummary, error) {
	db := s.db.WithContext(ctx)

	latestIDs := db.Model(&model.Message{}).
		Select("MAX(id)").
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Group("thread_id")

	var latest []*model.Message
	err := db.Where("id IN (?)", latestIDs).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&latest).Error
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return []*ThreadSummary{}, nil
	}

	threadIDs := make([]uint64, 0, len(latest))
	for _, m := range latest {
		threadIDs = append(threadIDs, m.ThreadID)
	}
	var unread []struct {
		ThreadID uint64
		Total    int64
	}
	err = db.Model(&model.Message{}).
		Select("thread_id, COUNT(*) AS total").
		Where("recipient_id = ? AND is_read = ? AND thread_id IN ?", userID, false, threadIDs).
		Group("thread_id").
		Scan(&unread).Error
	if err != nil {
		return nil, err
	}
	unreadMap := make(map[uint64]int64, len(unread))
	for _, u := range unread {
		unreadMap[u.ThreadID] = u.Total
	}

	out := make([]*ThreadSummary, 0, len(latest))
	for _, m := range latest {
		out = append(out, &ThreadSummary{Latest: m, Unread: unreadMap[m.ThreadID]})
	}
	return out, nil
}

func (s *MessageRepoImpl) GetThread(ctx context.Context, threadID uint64) ([]*model.Message, error) {
	msgs := make([]*model.Message, 0)
	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (s *MessageRepoImpl) MarkRead(ctx context.Context, userID, messageID uint64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ? AND recipient_id = ?", messageID, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (s *MessageRepoImpl) MarkThreadRead(ctx context.Context, userID, threadID uint64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("thread_id = ? AND recipient_id = ? AND is_read = ?", threadID, userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (s *MessageRepoImpl) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
