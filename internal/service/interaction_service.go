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
	"errors"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const counterTTL = time.Hour

type InteractionService interface {
	ToggleLike(ctx context.Context, userID uint64, kind string, targetID uint64) (*dto.ToggleLikeDTO, error)
	ToggleFavorite(ctx context.Context, userID uint64, itemType string, itemID uint64) (*dto.ToggleFavoriteDTO, error)
	ListFavorites(ctx context.Context, userID uint64, itemType string, page, pageSize int) ([]*dto.FavoriteDTO, error)
	CreateComment(ctx context.Context, userID uint64, kind string, targetID uint64, content string) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID uint64, kind string, commentID uint64) error
	ListComments(ctx context.Context, viewerID uint64, kind string, targetID uint64, page, pageSize int) ([]*dto.CommentDTO, error)
	GetInteractionState(ctx context.Context, viewerID uint64, kind string, targetID uint64) (*dto.InteractionStateDTO, error)
}

type InteractionServiceImpl struct {
	interactionRepo repository.InteractionRepo
	postRepo        repository.PostRepo
	ideaRepo        repository.IdeaRepo
	profileRepo     repository.ProfileRepo
	runner          *mutation.Runner
	publisher       *feed.Publisher
}

func NewInteractionService(
	interactionRepo repository.InteractionRepo,
	postRepo repository.PostRepo,
	ideaRepo repository.IdeaRepo,
	profileRepo repository.ProfileRepo,
	runner *mutation.Runner,
	publisher *feed.Publisher,
) InteractionService {
	return &InteractionServiceImpl{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		ideaRepo:        ideaRepo,
		profileRepo:     profileRepo,
		runner:          runner,
		publisher:       publisher,
	}
}

// interactionKeys 某类互动目标对应的缓存键与推送表
type interactionKeys struct {
	likeKey      string
	commentKey   string
	detailKey    string
	dirtyKey     string
	likeTable    string
	commentTable string
	targetTable  string
	fk           string
	itemType     string
}

var interactionKinds = map[string]interactionKeys{
	consts.TargetPost: {
		likeKey:      consts.PostLikeKey,
		commentKey:   consts.PostCommentKey,
		detailKey:    consts.PostDetailKey,
		dirtyKey:     consts.PostDirtyKey,
		likeTable:    feed.TablePostLikes,
		commentTable: feed.TablePostComments,
		targetTable:  feed.TableCommunityPosts,
		fk:           "post_id",
		itemType:     consts.ItemTypeCommunityPost,
	},
	consts.TargetIdea: {
		likeKey:      consts.IdeaLikeKey,
		commentKey:   consts.IdeaCommentKey,
		detailKey:    consts.IdeaDetailKey,
		dirtyKey:     consts.IdeaDirtyKey,
		likeTable:    feed.TableIdeaLikes,
		commentTable: feed.TableIdeaComments,
		targetTable:  feed.TableIdeas,
		fk:           "idea_id",
		itemType:     consts.ItemTypeIdea,
	},
}

// ToggleLike 先乐观调整缓存计数，点赞行与 likes_count 在同一事务内写入，失败时回滚缓存
func (s *InteractionServiceImpl) ToggleLike(ctx context.Context, userID uint64, kind string, targetID uint64) (*dto.ToggleLikeDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	keys, ok := interactionKinds[kind]
	if !ok {
		return nil, ErrTargetInvalid
	}
	ownerID, err := s.checkTarget(ctx, userID, kind, targetID)
	if err != nil {
		return nil, err
	}

	liked, err := s.interactionRepo.CheckLikeExists(ctx, kind, userID, targetID)
	if err != nil {
		return nil, err
	}
	var delta int64 = 1
	if liked {
		delta = -1
	}
	counterKey := keys.likeKey + strconv.FormatUint(targetID, 10)

	return mutation.Run(ctx, s.runner, mutation.Mutation[*dto.ToggleLikeDTO]{
		Name: "toggle_like",
		Optimistic: func(ctx context.Context) error {
			_, err := redis.IncrByIfExists(ctx, counterKey, delta)
			return err
		},
		Rollback: func(ctx context.Context) {
			if _, err := redis.IncrByIfExists(ctx, counterKey, -delta); err != nil {
				log.WarnContext(ctx, "like counter rollback failed", "key", counterKey, "err", err)
			}
		},
		Commit: func(ctx context.Context) (*dto.ToggleLikeDTO, error) {
			if !liked {
				count, err := s.interactionRepo.CreateLike(ctx, kind, userID, targetID)
				if err != nil {
					if errors.Is(err, repository.ErrDuplicate) {
						return nil, ErrActionDuplicate
					}
					return nil, err
				}
				return &dto.ToggleLikeDTO{Action: "liked", Liked: true, LikesCount: count}, nil
			}
			_, count, err := s.interactionRepo.DeleteLike(ctx, kind, userID, targetID)
			if err != nil {
				return nil, err
			}
			return &dto.ToggleLikeDTO{Action: "unliked", Liked: false, LikesCount: count}, nil
		},
		Invalidate: []string{keys.detailKey + strconv.FormatUint(targetID, 10)},
		OnSuccess: func(ctx context.Context, res *dto.ToggleLikeDTO) {
			if err := redis.SetWithExpiration(ctx, counterKey, res.LikesCount, counterTTL); err != nil {
				log.WarnContext(ctx, "like counter refresh failed", "key", counterKey, "err", err)
			}
			s.markDirty(ctx, keys.dirtyKey, targetID)

			row := map[string]any{"user_id": userID, keys.fk: targetID, "owner_id": ownerID}
			if res.Liked {
				s.publisher.Publish(ctx, feed.Insert, keys.likeTable, row, nil)
			} else {
				s.publisher.Publish(ctx, feed.Delete, keys.likeTable, nil, row)
			}
			s.publisher.Publish(ctx, feed.Update, keys.targetTable,
				map[string]any{"id": targetID, "user_id": ownerID, "likes_count": res.LikesCount}, nil)
		},
	})
}

func (s *InteractionServiceImpl) ToggleFavorite(ctx context.Context, userID uint64, itemType string, itemID uint64) (*dto.ToggleFavoriteDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	var kind string
	switch itemType {
	case consts.ItemTypeCommunityPost:
		kind = consts.TargetPost
	case consts.ItemTypeIdea:
		kind = consts.TargetIdea
	default:
		return nil, ErrTargetInvalid
	}
	favorited, err := s.interactionRepo.CheckFavoriteExists(ctx, userID, itemID, itemType)
	if err != nil {
		return nil, err
	}
	// 已收藏的条目即使不再可见也允许取消
	if !favorited {
		if _, err = s.checkTarget(ctx, userID, kind, itemID); err != nil {
			return nil, err
		}
	}

	return mutation.Run(ctx, s.runner, mutation.Mutation[*dto.ToggleFavoriteDTO]{
		Name: "toggle_favorite",
		Commit: func(ctx context.Context) (*dto.ToggleFavoriteDTO, error) {
			if favorited {
				if _, err := s.interactionRepo.DeleteFavorite(ctx, userID, itemID, itemType); err != nil {
					return nil, err
				}
				return &dto.ToggleFavoriteDTO{Action: "unfavorited", Favorited: false}, nil
			}
			fav := &model.Favorite{UserID: userID, ItemID: itemID, ItemType: itemType}
			if err := s.interactionRepo.CreateFavorite(ctx, fav); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return nil, ErrActionDuplicate
				}
				return nil, err
			}
			return &dto.ToggleFavoriteDTO{Action: "favorited", Favorited: true}, nil
		},
		Invalidate: []string{consts.FavoriteListKey + strconv.FormatUint(userID, 10)},
		OnSuccess: func(ctx context.Context, res *dto.ToggleFavoriteDTO) {
			row := map[string]any{"user_id": userID, "item_id": itemID, "item_type": itemType}
			if res.Favorited {
				s.publisher.Publish(ctx, feed.Insert, feed.TableFavorites, row, nil)
			} else {
				s.publisher.Publish(ctx, feed.Delete, feed.TableFavorites, nil, row)
			}
		},
	})
}

// ListFavorites 按收藏时间倒序，已删除的条目不返回
func (s *InteractionServiceImpl) ListFavorites(ctx context.Context, userID uint64, itemType string, page, pageSize int) ([]*dto.FavoriteDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	if itemType != "" && itemType != consts.ItemTypeIdea && itemType != consts.ItemTypeCommunityPost {
		return nil, ErrTargetInvalid
	}
	limit, offset := util.Paginate(page, pageSize, 100)
	favs, err := s.interactionRepo.ListFavorites(ctx, userID, itemType, limit, offset)
	if err != nil {
		return nil, err
	}

	var ideaIDs, postIDs []uint64
	for _, f := range favs {
		if f.ItemType == consts.ItemTypeIdea {
			ideaIDs = append(ideaIDs, f.ItemID)
		} else {
			postIDs = append(postIDs, f.ItemID)
		}
	}

	ideas := make(map[uint64]*model.Idea)
	posts := make(map[uint64]*model.CommunityPost)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.ideaRepo.GetIdeasByIds(gCtx, ideaIDs)
		for _, i := range list {
			ideas[i.ID] = i
		}
		return err
	})
	g.Go(func() error {
		list, err := s.postRepo.GetPostByIds(gCtx, postIDs)
		for _, p := range list {
			posts[p.ID] = p
		}
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*dto.FavoriteDTO, 0, len(favs))
	for _, f := range favs {
		item := &dto.FavoriteDTO{ID: f.ID, ItemID: f.ItemID, ItemType: f.ItemType, CreatedAt: f.CreatedAt}
		if f.ItemType == consts.ItemTypeIdea {
			idea, ok := ideas[f.ItemID]
			if !ok || idea.IsDeleted {
				continue
			}
			item.Idea = toIdeaDTO(idea)
		} else {
			post, ok := posts[f.ItemID]
			if !ok {
				continue
			}
			item.Post = toPostDTO(post)
			item.Post.IsFavorited = true
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *InteractionServiceImpl) CreateComment(ctx context.Context, userID uint64, kind string, targetID uint64, content string) (*dto.CommentDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	keys, ok := interactionKinds[kind]
	if !ok {
		return nil, ErrTargetInvalid
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrParamInvalid
	}
	ownerID, err := s.checkTarget(ctx, userID, kind, targetID)
	if err != nil {
		return nil, err
	}
	counterKey := keys.commentKey + strconv.FormatUint(targetID, 10)

	comment, err := mutation.Run(ctx, s.runner, mutation.Mutation[*repository.Comment]{
		Name: "create_comment",
		Optimistic: func(ctx context.Context) error {
			_, err := redis.IncrByIfExists(ctx, counterKey, 1)
			return err
		},
		Rollback: func(ctx context.Context) {
			_, _ = redis.IncrByIfExists(ctx, counterKey, -1)
		},
		Commit: func(ctx context.Context) (*repository.Comment, error) {
			c := &repository.Comment{TargetID: targetID, UserID: userID, Content: content}
			if err := s.interactionRepo.CreateComment(ctx, kind, c); err != nil {
				return nil, err
			}
			return c, nil
		},
		Invalidate: []string{keys.detailKey + strconv.FormatUint(targetID, 10)},
		OnSuccess: func(ctx context.Context, c *repository.Comment) {
			s.markDirty(ctx, keys.dirtyKey, targetID)
			s.publisher.Publish(ctx, feed.Insert, keys.commentTable, map[string]any{
				"id": c.ID, "user_id": userID, keys.fk: targetID, "owner_id": ownerID,
				"content": c.Content, "created_at": c.CreatedAt,
			}, nil)
		},
	})
	if err != nil {
		return nil, err
	}

	if profile, err := s.profileRepo.GetProfile(ctx, userID); err == nil {
		comment.Author = profile
	}
	return toCommentDTO(comment), nil
}

// DeleteComment 仅评论作者可删除
func (s *InteractionServiceImpl) DeleteComment(ctx context.Context, userID uint64, kind string, commentID uint64) error {
	if userID == 0 {
		return ErrAuthRequired
	}
	keys, ok := interactionKinds[kind]
	if !ok {
		return ErrTargetInvalid
	}
	comment, err := s.interactionRepo.GetComment(ctx, kind, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrPostCommentNotFound
	}
	if comment.UserID != userID {
		return UnauthorizedError
	}
	counterKey := keys.commentKey + strconv.FormatUint(comment.TargetID, 10)

	_, err = mutation.Run(ctx, s.runner, mutation.Mutation[struct{}]{
		Name: "delete_comment",
		Optimistic: func(ctx context.Context) error {
			_, err := redis.IncrByIfExists(ctx, counterKey, -1)
			return err
		},
		Rollback: func(ctx context.Context) {
			_, _ = redis.IncrByIfExists(ctx, counterKey, 1)
		},
		Commit: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.interactionRepo.DeleteComment(ctx, kind, comment)
		},
		Invalidate: []string{keys.detailKey + strconv.FormatUint(comment.TargetID, 10)},
		OnSuccess: func(ctx context.Context, _ struct{}) {
			s.markDirty(ctx, keys.dirtyKey, comment.TargetID)
			s.publisher.Publish(ctx, feed.Delete, keys.commentTable, nil, map[string]any{
				"id": comment.ID, "user_id": comment.UserID, keys.fk: comment.TargetID,
			})
		},
	})
	return err
}

func (s *InteractionServiceImpl) ListComments(ctx context.Context, viewerID uint64, kind string, targetID uint64, page, pageSize int) ([]*dto.CommentDTO, error) {
	if _, ok := interactionKinds[kind]; !ok {
		return nil, ErrTargetInvalid
	}
	if _, err := s.checkTarget(ctx, viewerID, kind, targetID); err != nil {
		return nil, err
	}
	limit, offset := util.Paginate(page, pageSize, 100)
	comments, err := s.interactionRepo.ListComments(ctx, kind, targetID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentDTO(c))
	}
	return out, nil
}

// GetInteractionState 计数优先读缓存，未命中时回源并回填
func (s *InteractionServiceImpl) GetInteractionState(ctx context.Context, viewerID uint64, kind string, targetID uint64) (*dto.InteractionStateDTO, error) {
	keys, ok := interactionKinds[kind]
	if !ok {
		return nil, ErrTargetInvalid
	}
	if _, err := s.checkTarget(ctx, viewerID, kind, targetID); err != nil {
		return nil, err
	}

	state := &dto.InteractionStateDTO{}
	id := strconv.FormatUint(targetID, 10)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.cachedCount(gCtx, keys.likeKey+id, func(ctx context.Context) (int, error) {
			return s.interactionRepo.GetLikeCount(ctx, kind, targetID)
		})
		state.LikesCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.cachedCount(gCtx, keys.commentKey+id, func(ctx context.Context) (int, error) {
			return s.interactionRepo.GetCommentCount(ctx, kind, targetID)
		})
		state.CommentsCount = n
		return err
	})
	if viewerID != 0 {
		g.Go(func() error {
			liked, err := s.interactionRepo.CheckLikeExists(gCtx, kind, viewerID, targetID)
			state.IsLiked = liked
			return err
		})
		g.Go(func() error {
			fav, err := s.interactionRepo.CheckFavoriteExists(gCtx, viewerID, targetID, keys.itemType)
			state.IsFavorited = fav
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *InteractionServiceImpl) cachedCount(ctx context.Context, key string, load func(ctx context.Context) (int, error)) (int, error) {
	if n, err := redis.GetInt64(ctx, key); err == nil {
		return int(n), nil
	} else if !redis.IsNil(err) {
		log.WarnContext(ctx, "counter cache read failed", "key", key, "err", err)
	}
	n, err := load(ctx)
	if err != nil {
		return 0, err
	}
	if err = redis.SetWithExpiration(ctx, key, n, counterTTL); err != nil {
		log.WarnContext(ctx, "counter cache fill failed", "key", key, "err", err)
	}
	return n, nil
}

// checkTarget 校验互动目标存在且对 viewer 可见，返回目标作者 ID
// 想法只对作者本人可见，分享到社区后对所有人可见
func (s *InteractionServiceImpl) checkTarget(ctx context.Context, viewerID uint64, kind string, targetID uint64) (uint64, error) {
	switch kind {
	case consts.TargetPost:
		post, err := s.postRepo.GetPost(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if post == nil {
			return 0, ErrPostNotFound
		}
		return post.UserID, nil
	case consts.TargetIdea:
		idea, err := s.ideaRepo.GetIdea(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if idea == nil || idea.IsDeleted {
			return 0, ErrIdeaNotFound
		}
		if idea.UserID != viewerID && !idea.SharedToCommunity {
			return 0, ErrIdeaNotFound
		}
		return idea.UserID, nil
	default:
		return 0, ErrTargetInvalid
	}
}

func (s *InteractionServiceImpl) markDirty(ctx context.Context, key string, id uint64) {
	if err := redis.SAddUint64(ctx, key, id); err != nil {
		log.WarnContext(ctx, "mark counter dirty failed", "key", key, "id", id, "err", err)
	}
}
