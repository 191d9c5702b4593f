package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/mutation"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"strings"
	"time"
)

// MessageService 用户之间的私信
type MessageService interface {
	SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageDTO) (*dto.MessageDTO, error)
	ListInbox(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.ThreadDTO, error)
	GetThread(ctx context.Context, userID, threadID uint64) ([]*dto.MessageDTO, error)
	MarkRead(ctx context.Context, userID, messageID uint64) error
	MarkThreadRead(ctx context.Context, userID, threadID uint64) error
	UnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error)
}

type messageServiceImpl struct {
	messageRepo repository.MessageRepo
	userRepo    repository.UserRepo
	profileRepo repository.ProfileRepo
	runner      *mutation.Runner
	publisher   *feed.Publisher
}

func NewMessageService(
	messageRepo repository.MessageRepo,
	userRepo repository.UserRepo,
	profileRepo repository.ProfileRepo,
	runner *mutation.Runner,
	publisher *feed.Publisher,
) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		runner:      runner,
		publisher:   publisher,
	}
}

// SendMessage 回复继承父消息的会话，否则开启新会话
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID uint64, req *dto.SendMessageDTO) (*dto.MessageDTO, error) {
	if senderID == 0 {
		return nil, ErrAuthRequired
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrParamInvalid
	}
	if req.RecipientID == 0 || req.RecipientID == senderID {
		return nil, ErrRecipientInvalid
	}
	recipient, err := s.userRepo.GetUserById(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, ErrRecipientInvalid
	}

	msg := &model.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     content,
	}
	if req.ParentID != nil && *req.ParentID != 0 {
		parent, err := s.messageRepo.GetMessage(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !isParticipant(parent, senderID) || !isParticipant(parent, req.RecipientID) {
			return nil, ErrMessageNotFound
		}
		msg.ParentID = req.ParentID
		msg.ThreadID = parent.ThreadID
	}

	return mutation.Run(ctx, s.runner, mutation.Mutation[*dto.MessageDTO]{
		Name: "send_message",
		Commit: func(ctx context.Context) (*dto.MessageDTO, error) {
			if err := s.messageRepo.CreateMessage(ctx, msg); err != nil {
				return nil, err
			}
			return toMessageDTO(msg), nil
		},
		Invalidate: []string{inboxKey(req.RecipientID)},
		OnSuccess: func(ctx context.Context, _ *dto.MessageDTO) {
			s.publisher.Publish(ctx, feed.Insert, feed.TableMessages, msg, nil)
		},
	})
}

func (s *messageServiceImpl) ListInbox(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.ThreadDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	limit, offset := util.Paginate(page, pageSize, 50)
	threads, err := s.messageRepo.ListInbox(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	peerIDs := make([]uint64, 0, len(threads))
	for _, t := range threads {
		peerIDs = append(peerIDs, peerOf(t.Latest, userID))
	}
	profiles, err := s.profileRepo.GetProfilesByIds(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ThreadDTO, 0, len(threads))
	for _, t := range threads {
		out = append(out, &dto.ThreadDTO{
			ThreadID:    t.Latest.ThreadID,
			Peer:        toAuthorDTO(profiles[peerOf(t.Latest, userID)]),
			Latest:      toMessageDTO(t.Latest),
			UnreadCount: t.Unread,
		})
	}
	return out, nil
}

// GetThread 仅会话参与者可读
func (s *messageServiceImpl) GetThread(ctx context.Context, userID, threadID uint64) ([]*dto.MessageDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	msgs, err := s.messageRepo.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 || !isParticipant(msgs[0], userID) {
		return nil, ErrThreadNotFound
	}

	ids := []uint64{msgs[0].SenderID, msgs[0].RecipientID}
	profiles, err := s.profileRepo.GetProfilesByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		item := toMessageDTO(m)
		item.Sender = toAuthorDTO(profiles[m.SenderID])
		out = append(out, item)
	}
	return out, nil
}

// MarkRead 仅收件人可标记
func (s *messageServiceImpl) MarkRead(ctx context.Context, userID, messageID uint64) error {
	if userID == 0 {
		return ErrAuthRequired
	}
	msg, err := s.messageRepo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil || msg.RecipientID != userID {
		return ErrMessageNotFound
	}
	if msg.IsRead {
		return nil
	}

	_, err = mutation.Run(ctx, s.runner, mutation.Mutation[int64]{
		Name: "mark_message_read",
		Commit: func(ctx context.Context) (int64, error) {
			return s.messageRepo.MarkRead(ctx, userID, messageID)
		},
		Invalidate: []string{inboxKey(userID)},
		OnSuccess: func(ctx context.Context, affected int64) {
			if affected == 0 {
				return
			}
			old := *msg
			msg.IsRead = true
			s.publisher.Publish(ctx, feed.Update, feed.TableMessages, msg, &old)
		},
	})
	return err
}

func (s *messageServiceImpl) MarkThreadRead(ctx context.Context, userID, threadID uint64) error {
	if userID == 0 {
		return ErrAuthRequired
	}
	_, err := mutation.Run(ctx, s.runner, mutation.Mutation[int64]{
		Name: "mark_thread_read",
		Commit: func(ctx context.Context) (int64, error) {
			return s.messageRepo.MarkThreadRead(ctx, userID, threadID)
		},
		Invalidate: []string{inboxKey(userID)},
		OnSuccess: func(ctx context.Context, affected int64) {
			if affected == 0 {
				return
			}
			s.publisher.Publish(ctx, feed.Update, feed.TableMessages,
				map[string]any{"thread_id": threadID, "recipient_id": userID, "is_read": true}, nil)
		},
	})
	return err
}

// UnreadCount 未读数缓存一分钟，写入时失效
func (s *messageServiceImpl) UnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	key := inboxKey(userID)
	if n, err := redis.GetInt64(ctx, key); err == nil {
		return &dto.UnreadCountDTO{UnreadCount: n}, nil
	}

	n, err := s.messageRepo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = redis.SetWithExpiration(ctx, key, n, time.Minute); err != nil {
		log.WarnContext(ctx, "inbox cache fill failed", "key", key, "err", err)
	}
	return &dto.UnreadCountDTO{UnreadCount: n}, nil
}

func inboxKey(userID uint64) string {
	return consts.InboxKey + strconv.FormatUint(userID, 10)
}

func isParticipant(m *model.Message, userID uint64) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

func peerOf(m *model.Message, userID uint64) uint64 {
	if m.SenderID == userID {
		return m.RecipientID
	}
	return m.SenderID
}
