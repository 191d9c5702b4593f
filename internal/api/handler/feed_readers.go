package handler

import (
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/service"
	"context"
	"strconv"
)

// snapshotLimit 推送快照时读取的条数
const snapshotLimit = 50

// SnapshotReader 事件到达后重新读取订阅键对应的集合
type SnapshotReader func(ctx context.Context, userID uint64, key feed.Key) (any, error)

// privateOwnerColumns 私有表允许的归属列，第一个为缺省列，值强制为当前用户
var privateOwnerColumns = map[string][]string{
	feed.TableIdeas:          {"user_id"},
	feed.TableFavorites:      {"user_id"},
	feed.TableSettings:       {"user_id"},
	feed.TableMemberships:    {"user_id"},
	feed.TableMessages:       {"recipient_id", "sender_id"},
	feed.TableCollabRequests: {"owner_id", "requester_id"},
}

// scopeKey 把私有表的过滤条件收敛到当前用户
func scopeKey(key feed.Key, userID uint64) feed.Key {
	cols, ok := privateOwnerColumns[key.Table]
	if !ok {
		return key
	}
	col, _, _ := key.Column()
	for _, c := range cols {
		if c == col {
			return feed.Eq(key.Table, col, userID)
		}
	}
	return feed.Eq(key.Table, cols[0], userID)
}

// filterID 过滤值按 ID 解析，没有过滤条件时返回 0
func filterID(key feed.Key) (uint64, error) {
	_, val, ok := key.Column()
	if !ok {
		return 0, nil
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, service.ErrParamInvalid
	}
	return id, nil
}

// FeedServices 快照读取依赖的服务
type FeedServices struct {
	Idea         service.IdeaService
	Community    service.CommunityService
	Interaction  service.InteractionService
	Message      service.MessageService
	Collab       service.CollaborationService
	Profile      service.ProfileService
	Settings     service.SettingsService
	Subscription service.SubscriptionService
}

// NewSnapshotReaders 每张可订阅表对应的读取方式，未列出的表只推送变更事件
func NewSnapshotReaders(s FeedServices) map[string]SnapshotReader {
	comments := func(kind string) SnapshotReader {
		return func(ctx context.Context, userID uint64, key feed.Key) (any, error) {
			id, err := filterID(key)
			if err != nil || id == 0 {
				return nil, service.ErrParamInvalid
			}
			return s.Interaction.ListComments(ctx, userID, kind, id, 1, snapshotLimit)
		}
	}
	likes := func(kind string) SnapshotReader {
		return func(ctx context.Context, userID uint64, key feed.Key) (any, error) {
			id, err := filterID(key)
			if err != nil || id == 0 {
				return nil, service.ErrParamInvalid
			}
			return s.Interaction.GetInteractionState(ctx, userID, kind, id)
		}
	}

	return map[string]SnapshotReader{
		feed.TableIdeas: func(ctx context.Context, userID uint64, _ feed.Key) (any, error) {
			return s.Idea.ListIdeas(ctx, userID, nil, nil, 1, snapshotLimit)
		},
		feed.TableCommunityPosts: func(ctx context.Context, userID uint64, key feed.Key) (any, error) {
			col, val, _ := key.Column()
			if col == "user_id" {
				authorID, err := filterID(key)
				if err != nil {
					return nil, err
				}
				return s.Community.ListUserPosts(ctx, userID, authorID, 1, snapshotLimit)
			}
			return s.Community.ListPosts(ctx, userID, val, 1, snapshotLimit)
		},
		feed.TablePostComments: comments(consts.TargetPost),
		feed.TableIdeaComments: comments(consts.TargetIdea),
		feed.TablePostLikes:    likes(consts.TargetPost),
		feed.TableIdeaLikes:    likes(consts.TargetIdea),
		feed.TableFavorites: func(ctx context.Context, userID uint64, _ feed.Key) (any, error) {
			return s.Interaction.ListFavorites(ctx, userID, "", 1, snapshotLimit)
		},
		feed.TableMessages: func(ctx context.Context, userID uint64, _ feed.Key) (any, error) {
			return s.Message.ListInbox(ctx, userID, 1, snapshotLimit)
		},
		feed.TableCollabRequests: func(ctx context.Context, userID uint64, key feed.Key) (any, error) {
			if col, _, _ := key.Column(); col == "requester_id" {
				return s.Collab.ListOutgoing(ctx, userID, 1, snapshotLimit)
			}
			return s.Collab.ListIncoming(ctx, userID, "", 1, snapshotLimit)
		},
		feed.TableProfiles: func(ctx context.Context, _ uint64, key feed.Key) (any, error) {
			id, err := filterID(key)
			if err != nil || id == 0 {
				return nil, service.ErrParamInvalid
			}
			return s.Profile.GetProfile(ctx, id)
		},
		feed.TableSettings: func(ctx context.Context, userID uint64, _ feed.Key) (any, error) {
			return s.Settings.GetSettings(ctx, userID)
		},
		feed.TableMemberships: func(ctx context.Context, userID uint64, _ feed.Key) (any, error) {
			return s.Subscription.GetMembership(ctx, userID)
		},
	}
}
