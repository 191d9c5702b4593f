package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/es"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	log "log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

type CommunityService interface {
	ListPosts(ctx context.Context, viewerID uint64, channel string, page, pageSize int) (*dto.PageDTO[*dto.PostDTO], error)
	ListChannels(ctx context.Context) ([]*dto.ChannelDTO, error)
	ListUserPosts(ctx context.Context, viewerID, authorID uint64, page, pageSize int) ([]*dto.PostDTO, error)
	GetPost(ctx context.Context, viewerID, postID uint64) (*dto.PostDTO, error)
	UpdatePost(ctx context.Context, userID, postID uint64, req *dto.UpdatePostDTO) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, userID, postID uint64) error
	PinPost(ctx context.Context, userID uint64, roles []string, postID uint64, pinned bool) error
	SearchPosts(ctx context.Context, viewerID uint64, keyword, channel string, page, pageSize int) ([]*dto.PostDTO, error)
}

type CommunityServiceImpl struct {
	postRepo        repository.PostRepo
	interactionRepo repository.InteractionRepo
	esRepo          es.PostRepo
	publisher       *feed.Publisher
}

// NewCommunityService esRepo 为 nil 时搜索退化为 SQL LIKE
func NewCommunityService(
	postRepo repository.PostRepo,
	interactionRepo repository.InteractionRepo,
	esRepo es.PostRepo,
	publisher *feed.Publisher,
) CommunityService {
	return &CommunityServiceImpl{
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		esRepo:          esRepo,
		publisher:       publisher,
	}
}

func (s *CommunityServiceImpl) ListPosts(ctx context.Context, viewerID uint64, channel string, page, pageSize int) (*dto.PageDTO[*dto.PostDTO], error) {
	channel = strings.TrimSpace(channel)
	if channel != "" && !consts.IsChannel(channel) {
		return nil, ErrChannelInvalid
	}
	limit, offset := util.Paginate(page, pageSize, 50)
	posts, total, err := s.postRepo.ListPosts(ctx, channel, limit, offset)
	if err != nil {
		return nil, err
	}
	items, err := s.hydrate(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &dto.PageDTO[*dto.PostDTO]{
		Items:    items,
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	}, nil
}

// ListChannels 固定频道及其帖子数
func (s *CommunityServiceImpl) ListChannels(ctx context.Context) ([]*dto.ChannelDTO, error) {
	counts, err := s.postRepo.CountByChannel(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ChannelDTO, 0, len(consts.Channels))
	for _, name := range consts.Channels {
		out = append(out, &dto.ChannelDTO{Name: name, PostCount: counts[name]})
	}
	return out, nil
}

func (s *CommunityServiceImpl) ListUserPosts(ctx context.Context, viewerID, authorID uint64, page, pageSize int) ([]*dto.PostDTO, error) {
	limit, offset := util.Paginate(page, pageSize, 50)
	posts, err := s.postRepo.ListPostsByUser(ctx, authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, viewerID, posts)
}

func (s *CommunityServiceImpl) GetPost(ctx context.Context, viewerID, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	items, err := s.hydrate(ctx, viewerID, []*model.CommunityPost{post})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func (s *CommunityServiceImpl) UpdatePost(ctx context.Context, userID, postID uint64, req *dto.UpdatePostDTO) (*dto.PostDTO, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, 4)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrParamInvalid
		}
		fields["title"] = title
	}
	content := post.Content
	if req.Content != nil {
		content = *req.Content
		fields["content"] = content
	}
	if req.Tags != nil || req.Content != nil {
		tags := req.Tags
		if tags == nil {
			tags = post.Tags
		}
		fields["tags"] = model.Tags(util.MergeTags(tags, content))
	}
	if req.Channel != nil {
		if !consts.IsChannel(*req.Channel) {
			return nil, ErrChannelInvalid
		}
		fields["channel"] = *req.Channel
	}
	if len(fields) == 0 {
		return toPostDTO(post), nil
	}

	old := *post
	idea, err := s.postRepo.UpdatePost(ctx, post, fields)
	if err != nil {
		return nil, err
	}
	updated, err := s.postRepo.GetPost(ctx, postID)
	if err != nil || updated == nil {
		return nil, ErrPostNotFound
	}

	s.publisher.Publish(ctx, feed.Update, feed.TableCommunityPosts, updated, &old)
	if idea != nil {
		s.publisher.Publish(ctx, feed.Update, feed.TableIdeas, idea, nil)
	}
	return toPostDTO(updated), nil
}

// DeletePost 硬删除；来源想法的共享标记在同一事务内清除，找不到来源想法时删除照常成功
func (s *CommunityServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	cleared, err := s.postRepo.DeletePost(ctx, post)
	if err != nil {
		return err
	}

	s.publisher.Publish(ctx, feed.Delete, feed.TableCommunityPosts, nil, post)
	if cleared != nil {
		cleared.SharedToCommunity = false
		s.publisher.Publish(ctx, feed.Update, feed.TableIdeas, cleared, nil)
	}
	return nil
}

// PinPost 作者或管理员可置顶
func (s *CommunityServiceImpl) PinPost(ctx context.Context, userID uint64, roles []string, postID uint64, pinned bool) error {
	if userID == 0 {
		return ErrAuthRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID && !model.Roles(roles).Has(consts.RoleAdmin) {
		return UnauthorizedError
	}
	if post.IsPinned == pinned {
		return nil
	}
	if err = s.postRepo.SetPinned(ctx, postID, pinned); err != nil {
		return err
	}
	old := *post
	post.IsPinned = pinned
	s.publisher.Publish(ctx, feed.Update, feed.TableCommunityPosts, post, &old)
	return nil
}

func (s *CommunityServiceImpl) SearchPosts(ctx context.Context, viewerID uint64, keyword, channel string, page, pageSize int) ([]*dto.PostDTO, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []*dto.PostDTO{}, nil
	}
	limit, offset := util.Paginate(page, pageSize, 50)

	if s.esRepo != nil {
		posts, err := s.searchES(ctx, keyword, channel, limit, offset)
		if err == nil {
			return s.hydrate(ctx, viewerID, posts)
		}
		log.WarnContext(ctx, "es search failed, fallback to sql", "err", err)
	}

	posts, err := s.postRepo.SearchPosts(ctx, keyword, channel, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, viewerID, posts)
}

// searchES 以 ES 结果排序，正文从数据库回填
func (s *CommunityServiceImpl) searchES(ctx context.Context, keyword, channel string, limit, offset int) ([]*model.CommunityPost, error) {
	hits, err := s.esRepo.SearchPosts(ctx, keyword, channel, offset, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	rows, err := s.postRepo.GetPostByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.CommunityPost, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	posts := make([]*model.CommunityPost, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// hydrate 填充当前用户的点赞与收藏状态
func (s *CommunityServiceImpl) hydrate(ctx context.Context, viewerID uint64, posts []*model.CommunityPost) ([]*dto.PostDTO, error) {
	out := make([]*dto.PostDTO, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	liked := map[uint64]bool{}
	favorited := map[uint64]bool{}
	if viewerID != 0 {
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			m, err := s.interactionRepo.GetLikedTargetIDs(gCtx, consts.TargetPost, viewerID, ids)
			liked = m
			return err
		})
		g.Go(func() error {
			m, err := s.interactionRepo.GetFavoritedItemIDs(gCtx, viewerID, consts.ItemTypeCommunityPost, ids)
			favorited = m
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for _, p := range posts {
		item := toPostDTO(p)
		item.IsLiked = liked[p.ID]
		item.IsFavorited = favorited[p.ID]
		out = append(out, item)
	}
	return out, nil
}

func (s *CommunityServiceImpl) ownedPost(ctx context.Context, userID, postID uint64) (*model.CommunityPost, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, UnauthorizedError
	}
	return post, nil
}
