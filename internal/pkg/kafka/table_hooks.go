package kafka

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/es"
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/repository"
	"context"
	log "log/slog"
	"time"
	"unicode/utf8"
)

const previewRunes = 80

// interactionTable 点赞/评论表对应的目标信息
type interactionTable struct {
	kind     string
	fk       string
	dirtyKey string
	notify   int8
}

// TableHooks Canal 变更的下游处理：通知、搜索索引与计数校准
type TableHooks struct {
	postRepo     repository.PostRepo
	ideaRepo     repository.IdeaRepo
	profileRepo  repository.ProfileRepo
	settingsRepo repository.SettingsRepo
	sysBoxRepo   mongo.SysBoxRepo
	postESRepo   es.PostRepo
	now          func() time.Time
}

// NewTableHooks sysBoxRepo 与 postESRepo 可为 nil，对应钩子不注册
func NewTableHooks(
	postRepo repository.PostRepo,
	ideaRepo repository.IdeaRepo,
	profileRepo repository.ProfileRepo,
	settingsRepo repository.SettingsRepo,
	sysBoxRepo mongo.SysBoxRepo,
	postESRepo es.PostRepo,
) *TableHooks {
	return &TableHooks{
		postRepo:     postRepo,
		ideaRepo:     ideaRepo,
		profileRepo:  profileRepo,
		settingsRepo: settingsRepo,
		sysBoxRepo:   sysBoxRepo,
		postESRepo:   postESRepo,
		now:          time.Now,
	}
}

// Register 把全部钩子挂到处理器上
func (h *TableHooks) Register(handler *ChangeFeedHandler) *ChangeFeedHandler {
	handler.
		On("community_post_likes", h.likeHook(interactionTable{consts.TargetPost, "post_id", consts.PostDirtyKey, mongo.NotifyPostLike})).
		On("idea_likes", h.likeHook(interactionTable{consts.TargetIdea, "idea_id", consts.IdeaDirtyKey, mongo.NotifyIdeaLike})).
		On("community_post_comments", h.commentHook(interactionTable{consts.TargetPost, "post_id", consts.PostDirtyKey, mongo.NotifyPostComment})).
		On("idea_comments", h.commentHook(interactionTable{consts.TargetIdea, "idea_id", consts.IdeaDirtyKey, mongo.NotifyIdeaComment})).
		On("collaboration_requests", h.collaborationHook)
	if h.postESRepo != nil {
		handler.On("community_posts", h.postIndexHook)
	}
	return handler
}

// likeHook 点赞增删标记计数为脏，新增时通知目标作者
func (h *TableHooks) likeHook(t interactionTable) TableHook {
	return func(ctx context.Context, msg *CanalMessage) error {
		for _, row := range msg.Data {
			targetID := StrToUint64(row[t.fk])
			if err := redis.SAddUint64(ctx, t.dirtyKey, targetID); err != nil {
				return err
			}
			if msg.Type != INSERT {
				continue
			}
			ownerID, title, err := h.targetOwner(ctx, t.kind, targetID)
			if err != nil || ownerID == 0 {
				continue
			}
			h.notify(ctx, &mongo.SysBoxModel{
				ReceiverID: ownerID,
				SenderID:   StrToUint64(row["user_id"]),
				Type:       t.notify,
				TargetID:   targetID,
				Content:    "liked your " + kindLabel(t.kind),
				Payload:    map[string]any{"title": title},
			}, func(st *model.Settings) bool { return st.NotifyOnLike })
		}
		return nil
	}
}

// commentHook 评论增删标记计数为脏，新增时通知目标作者
func (h *TableHooks) commentHook(t interactionTable) TableHook {
	return func(ctx context.Context, msg *CanalMessage) error {
		for _, row := range msg.Data {
			targetID := StrToUint64(row[t.fk])
			if err := redis.SAddUint64(ctx, t.dirtyKey, targetID); err != nil {
				return err
			}
			if msg.Type != INSERT {
				continue
			}
			ownerID, title, err := h.targetOwner(ctx, t.kind, targetID)
			if err != nil || ownerID == 0 {
				continue
			}
			h.notify(ctx, &mongo.SysBoxModel{
				ReceiverID: ownerID,
				SenderID:   StrToUint64(row["user_id"]),
				Type:       t.notify,
				TargetID:   targetID,
				Content:    preview(StrToString(row["content"])),
				Payload:    map[string]any{"title": title, "comment_id": StrToUint64(row["id"])},
			}, func(st *model.Settings) bool { return st.NotifyOnComment })
		}
		return nil
	}
}

// collaborationHook 新申请通知帖子作者，处理结果通知申请人
func (h *TableHooks) collaborationHook(ctx context.Context, msg *CanalMessage) error {
	for i, row := range msg.Data {
		requestID := StrToUint64(row["id"])
		ownerID := StrToUint64(row["owner_id"])
		requesterID := StrToUint64(row["requester_id"])
		payload := map[string]any{"post_id": StrToUint64(row["post_id"])}

		switch msg.Type {
		case INSERT:
			h.notify(ctx, &mongo.SysBoxModel{
				ReceiverID: ownerID,
				SenderID:   requesterID,
				Type:       mongo.NotifyCollabRequest,
				TargetID:   requestID,
				Content:    preview(StrToString(row["message"])),
				Payload:    payload,
			}, func(st *model.Settings) bool { return st.NotifyOnCollabRequest })
		case UPDATE:
			if _, changed := msg.OldValue(i, "status"); !changed {
				continue
			}
			var typ int8
			switch StrToString(row["status"]) {
			case consts.CollabAccepted:
				typ = mongo.NotifyCollabAccepted
			case consts.CollabRejected:
				typ = mongo.NotifyCollabRejected
			default:
				continue
			}
			h.notify(ctx, &mongo.SysBoxModel{
				ReceiverID: requesterID,
				SenderID:   ownerID,
				Type:       typ,
				TargetID:   requestID,
				Content:    "your collaboration request was " + StrToString(row["status"]),
				Payload:    payload,
			}, func(st *model.Settings) bool { return st.NotifyOnCollabRequest })
		}
	}
	return nil
}

// postIndexHook 帖子增改写入 ES，删除时移除文档；以 binlog 时间作为外部版本号
func (h *TableHooks) postIndexHook(ctx context.Context, msg *CanalMessage) error {
	for _, row := range msg.Data {
		id := StrToUint64(row["id"])
		if msg.Type == DELETE {
			if err := h.postESRepo.DeletePost(ctx, id); err != nil {
				return err
			}
			continue
		}

		doc := &es.PostES{
			ID:            id,
			UserID:        StrToUint64(row["user_id"]),
			Title:         StrToString(row["title"]),
			Content:       StrToString(row["content"]),
			Channel:       StrToString(row["channel"]),
			Tags:          StrToTags(row["tags"]),
			LikesCount:    StrToInt(row["likes_count"]),
			CommentsCount: StrToInt(row["comments_count"]),
			IsPinned:      StrToBool(row["is_pinned"]),
			CreatedAt:     StrToTime(row["created_at"]),
			UpdatedAt:     StrToTime(row["updated_at"]),
		}
		if profile, err := h.profileRepo.GetProfile(ctx, doc.UserID); err == nil && profile != nil {
			doc.AuthorName = profile.Username
		}
		version := msg.ES
		if version == 0 {
			version = h.now().UnixMilli()
		}
		if err := h.postESRepo.IndexPost(ctx, doc, version); err != nil {
			return err
		}
	}
	return nil
}

// notify 接收者关闭对应通知或给自己互动时跳过；通知失败只记录日志
func (h *TableHooks) notify(ctx context.Context, n *mongo.SysBoxModel, allow func(*model.Settings) bool) {
	if h.sysBoxRepo == nil || n.ReceiverID == 0 || n.ReceiverID == n.SenderID {
		return
	}
	settings, err := h.settingsRepo.GetSettings(ctx, n.ReceiverID)
	if err != nil {
		log.WarnContext(ctx, "load settings for notification failed", "user_id", n.ReceiverID, "err", err)
		return
	}
	if settings == nil {
		settings = model.DefaultSettings(n.ReceiverID)
	}
	if !allow(settings) {
		return
	}
	n.CreatedAt = h.now()
	if err = h.sysBoxRepo.CreateNotification(ctx, n); err != nil {
		log.ErrorContext(ctx, "create notification failed", "type", n.Type, "target_id", n.TargetID, "err", err)
	}
}

func (h *TableHooks) targetOwner(ctx context.Context, kind string, id uint64) (uint64, string, error) {
	if kind == consts.TargetPost {
		post, err := h.postRepo.GetPost(ctx, id)
		if err != nil || post == nil {
			return 0, "", err
		}
		return post.UserID, post.Title, nil
	}
	idea, err := h.ideaRepo.GetIdea(ctx, id)
	if err != nil || idea == nil {
		return 0, "", err
	}
	return idea.UserID, idea.Title, nil
}

func kindLabel(kind string) string {
	if kind == consts.TargetPost {
		return "post"
	}
	return "idea"
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return string([]rune(s)[:previewRunes]) + "..."
}
