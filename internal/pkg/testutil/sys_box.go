package testutil

import (
	"IdeaVault/internal/pkg/mongo"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SysBoxStore 内存版通知仓库
type SysBoxStore struct {
	mu    sync.Mutex
	Items []*mongo.SysBoxModel
}

var _ mongo.SysBoxRepo = (*SysBoxStore)(nil)

func (s *SysBoxStore) CreateNotification(_ context.Context, msg *mongo.SysBoxModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	s.Items = append(s.Items, msg)
	return nil
}

func (s *SysBoxStore) ListNotifications(_ context.Context, userID uint64, filter mongo.NotificationFilter, limit, offset int64) ([]*mongo.SysBoxModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*mongo.SysBoxModel
	for _, m := range s.Items {
		if m.ReceiverID != userID || (filter.UnreadOnly && m.IsRead) || (filter.Type > 0 && m.Type != filter.Type) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= int64(len(out)) {
		return []*mongo.SysBoxModel{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (s *SysBoxStore) find(userID uint64, msgID string) (int, error) {
	id, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return -1, mongo.ErrInvalidID
	}
	for i, m := range s.Items {
		if m.ID == id && m.ReceiverID == userID {
			return i, nil
		}
	}
	return -1, mongo.ErrNotFound
}

func (s *SysBoxStore) MarkRead(_ context.Context, userID uint64, msgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(userID, msgID)
	if err != nil {
		return err
	}
	s.Items[i].IsRead = true
	return nil
}

func (s *SysBoxStore) MarkAllRead(_ context.Context, userID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.Items {
		if m.ReceiverID == userID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *SysBoxStore) DeleteNotification(_ context.Context, userID uint64, msgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(userID, msgID)
	if err != nil {
		return err
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	return nil
}

func (s *SysBoxStore) CountUnread(_ context.Context, userID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.Items {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

// Len 并发安全的条数
func (s *SysBoxStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Items)
}
