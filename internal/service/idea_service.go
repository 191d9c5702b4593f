package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/clipper"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"
)

type IdeaService interface {
	CreateIdea(ctx context.Context, userID uint64, req *dto.CreateIdeaDTO) (*dto.CreateIdeaResultDTO, error)
	UpdateIdea(ctx context.Context, userID, ideaID uint64, req *dto.UpdateIdeaDTO) (*dto.IdeaDTO, error)
	DeleteIdea(ctx context.Context, userID, ideaID uint64) error
	RestoreIdea(ctx context.Context, userID, ideaID uint64) (*dto.IdeaDTO, error)
	PurgeIdea(ctx context.Context, userID, ideaID uint64) error
	ListTrash(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.IdeaDTO, error)
	ListIdeas(ctx context.Context, userID uint64, folderID *uint64, drafts *bool, page, pageSize int) (*dto.PageDTO[*dto.IdeaDTO], error)
	GetIdea(ctx context.Context, viewerID, ideaID uint64) (*dto.IdeaDTO, error)
	ShareIdea(ctx context.Context, userID, ideaID uint64, channel string) (*dto.PostDTO, error)
	ImportIdeaFromURL(ctx context.Context, userID uint64, rawURL string) (*dto.IdeaDTO, error)

	CreateFolder(ctx context.Context, userID uint64, name string) (*dto.FolderDTO, error)
	ListFolders(ctx context.Context, userID uint64) ([]*dto.FolderDTO, error)
	RenameFolder(ctx context.Context, userID, folderID uint64, name string) error
	DeleteFolder(ctx context.Context, userID, folderID uint64) error
}

type IdeaServiceImpl struct {
	ideaRepo   repository.IdeaRepo
	folderRepo repository.FolderRepo
	postRepo   repository.PostRepo
	clipper    *clipper.Clipper
	publisher  *feed.Publisher
}

func NewIdeaService(
	ideaRepo repository.IdeaRepo,
	folderRepo repository.FolderRepo,
	postRepo repository.PostRepo,
	clip *clipper.Clipper,
	publisher *feed.Publisher,
) IdeaService {
	return &IdeaServiceImpl{
		ideaRepo:   ideaRepo,
		folderRepo: folderRepo,
		postRepo:   postRepo,
		clipper:    clip,
		publisher:  publisher,
	}
}

// CreateIdea 分享到社区时想法与帖子在同一事务内写入，频道校验先于任何写入
func (s *IdeaServiceImpl) CreateIdea(ctx context.Context, userID uint64, req *dto.CreateIdeaDTO) (*dto.CreateIdeaResultDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrParamInvalid
	}
	channel := strings.TrimSpace(req.Channel)
	if req.ShareToCommunity {
		if channel == "" {
			return nil, ErrChannelRequired
		}
		if !consts.IsChannel(channel) {
			return nil, ErrChannelInvalid
		}
	}
	if err := s.checkFolder(ctx, userID, req.FolderID); err != nil {
		return nil, err
	}

	idea := &model.Idea{
		UserID:   userID,
		FolderID: req.FolderID,
		Title:    title,
		Content:  req.Content,
		Tags:     util.MergeTags(req.Tags, req.Content),
		IsDraft:  req.IsDraft,
	}

	if !req.ShareToCommunity {
		if err := s.ideaRepo.CreateIdea(ctx, idea); err != nil {
			return nil, err
		}
		s.publisher.Publish(ctx, feed.Insert, feed.TableIdeas, idea, nil)
		return &dto.CreateIdeaResultDTO{Idea: toIdeaDTO(idea)}, nil
	}

	post := newPostFromIdea(idea, channel)
	if err := s.ideaRepo.CreateIdeaWithPost(ctx, idea, post); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, feed.Insert, feed.TableIdeas, idea, nil)
	s.publisher.Publish(ctx, feed.Insert, feed.TableCommunityPosts, post, nil)

	return &dto.CreateIdeaResultDTO{Idea: toIdeaDTO(idea), Post: s.loadPostDTO(ctx, post)}, nil
}

func (s *IdeaServiceImpl) UpdateIdea(ctx context.Context, userID, ideaID uint64, req *dto.UpdateIdeaDTO) (*dto.IdeaDTO, error) {
	idea, err := s.ownedIdea(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{}, 5)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrParamInvalid
		}
		fields["title"] = title
	}
	content := idea.Content
	if req.Content != nil {
		content = *req.Content
		fields["content"] = content
	}
	if req.Tags != nil || req.Content != nil {
		tags := req.Tags
		if tags == nil {
			tags = idea.Tags
		}
		fields["tags"] = model.Tags(util.MergeTags(tags, content))
	}
	if req.FolderID != nil {
		if *req.FolderID == 0 {
			fields["folder_id"] = nil
		} else {
			if err = s.checkFolder(ctx, userID, req.FolderID); err != nil {
				return nil, err
			}
			fields["folder_id"] = *req.FolderID
		}
	}
	if req.IsDraft != nil {
		fields["is_draft"] = *req.IsDraft
	}
	if len(fields) == 0 {
		return toIdeaDTO(idea), nil
	}

	old := *idea
	mirrored, err := s.ideaRepo.UpdateIdea(ctx, idea, fields)
	if err != nil {
		return nil, err
	}
	updated, err := s.ideaRepo.GetIdea(ctx, ideaID)
	if err != nil || updated == nil {
		return nil, ErrIdeaNotFound
	}

	s.publisher.Publish(ctx, feed.Update, feed.TableIdeas, updated, &old)
	for _, post := range mirrored {
		s.publisher.Publish(ctx, feed.Update, feed.TableCommunityPosts, post, nil)
	}
	return toIdeaDTO(updated), nil
}

// DeleteIdea 软删除，可从回收站恢复
func (s *IdeaServiceImpl) DeleteIdea(ctx context.Context, userID, ideaID uint64) error {
	if _, err := s.ownedIdea(ctx, userID, ideaID); err != nil {
		return err
	}
	affected, err := s.ideaRepo.SoftDeleteIdea(ctx, userID, ideaID, time.Now())
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publishIdea(ctx, feed.Update, ideaID)
	}
	return nil
}

func (s *IdeaServiceImpl) RestoreIdea(ctx context.Context, userID, ideaID uint64) (*dto.IdeaDTO, error) {
	if _, err := s.ownedIdea(ctx, userID, ideaID); err != nil {
		return nil, err
	}
	affected, err := s.ideaRepo.RestoreIdea(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrIdeaNotInTrash
	}
	idea := s.publishIdea(ctx, feed.Update, ideaID)
	if idea == nil {
		return nil, ErrIdeaNotFound
	}
	return toIdeaDTO(idea), nil
}

// PurgeIdea 彻底删除，仅限回收站中的想法
func (s *IdeaServiceImpl) PurgeIdea(ctx context.Context, userID, ideaID uint64) error {
	idea, err := s.ownedIdea(ctx, userID, ideaID)
	if err != nil {
		return err
	}
	if !idea.IsDeleted {
		return ErrIdeaNotInTrash
	}
	affected, err := s.ideaRepo.PurgeIdea(ctx, userID, ideaID)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.publisher.Publish(ctx, feed.Delete, feed.TableIdeas, nil, idea)
	}
	return nil
}

func (s *IdeaServiceImpl) ListTrash(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.IdeaDTO, error) {
	limit, offset := util.Paginate(page, pageSize, 100)
	ideas, err := s.ideaRepo.ListTrash(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return toIdeaDTOs(ideas), nil
}

// ListIdeas 只返回未删除的想法
func (s *IdeaServiceImpl) ListIdeas(ctx context.Context, userID uint64, folderID *uint64, drafts *bool, page, pageSize int) (*dto.PageDTO[*dto.IdeaDTO], error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	limit, offset := util.Paginate(page, pageSize, 100)
	ideas, total, err := s.ideaRepo.ListIdeas(ctx, repository.IdeaQuery{
		UserID:   userID,
		FolderID: folderID,
		Drafts:   drafts,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.PageDTO[*dto.IdeaDTO]{
		Items:    toIdeaDTOs(ideas),
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	}, nil
}

// GetIdea 软删除的想法仍可按 ID 读取；非作者只能读取已分享且未删除的想法
func (s *IdeaServiceImpl) GetIdea(ctx context.Context, viewerID, ideaID uint64) (*dto.IdeaDTO, error) {
	idea, err := s.ideaRepo.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, ErrIdeaNotFound
	}
	if idea.UserID != viewerID && (!idea.SharedToCommunity || idea.IsDeleted) {
		return nil, ErrIdeaNotFound
	}
	return toIdeaDTO(idea), nil
}

func (s *IdeaServiceImpl) ShareIdea(ctx context.Context, userID, ideaID uint64, channel string) (*dto.PostDTO, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, ErrChannelRequired
	}
	if !consts.IsChannel(channel) {
		return nil, ErrChannelInvalid
	}
	idea, err := s.ownedIdea(ctx, userID, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.IsDeleted {
		return nil, ErrIdeaNotFound
	}
	if idea.SharedToCommunity {
		return nil, ErrIdeaAlreadyShared
	}

	post := newPostFromIdea(idea, channel)
	if err = s.ideaRepo.ShareIdea(ctx, idea.ID, post); err != nil {
		return nil, err
	}
	s.publishIdea(ctx, feed.Update, idea.ID)
	s.publisher.Publish(ctx, feed.Insert, feed.TableCommunityPosts, post, nil)
	return s.loadPostDTO(ctx, post), nil
}

// ImportIdeaFromURL 抓取网页正文保存为草稿
func (s *IdeaServiceImpl) ImportIdeaFromURL(ctx context.Context, userID uint64, rawURL string) (*dto.IdeaDTO, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	article, err := s.clipper.Fetch(ctx, rawURL)
	if err != nil {
		log.WarnContext(ctx, "idea import failed", "url", rawURL, "err", err)
		if errors.Is(err, clipper.ErrUnsupportedURL) {
			return nil, ErrParamInvalid
		}
		return nil, ErrImportFailed
	}

	title := article.Title
	if r := []rune(title); len(r) > 255 {
		title = string(r[:255])
	}
	idea := &model.Idea{
		UserID:    userID,
		Title:     title,
		Content:   article.Content,
		Tags:      util.MergeTags(article.Tags, ""),
		IsDraft:   true,
		SourceURL: rawURL,
	}
	if err = s.ideaRepo.CreateIdea(ctx, idea); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, feed.Insert, feed.TableIdeas, idea, nil)
	return toIdeaDTO(idea), nil
}

func (s *IdeaServiceImpl) CreateFolder(ctx context.Context, userID uint64, name string) (*dto.FolderDTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrParamInvalid
	}
	folder := &model.Folder{UserID: userID, Name: name}
	if err := s.folderRepo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return toFolderDTO(folder), nil
}

func (s *IdeaServiceImpl) ListFolders(ctx context.Context, userID uint64) ([]*dto.FolderDTO, error) {
	folders, err := s.folderRepo.ListFolders(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.FolderDTO, 0, len(folders))
	for _, f := range folders {
		out = append(out, toFolderDTO(f))
	}
	return out, nil
}

func (s *IdeaServiceImpl) RenameFolder(ctx context.Context, userID, folderID uint64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrParamInvalid
	}
	affected, err := s.folderRepo.RenameFolder(ctx, userID, folderID, name)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFolderNotFound
	}
	return nil
}

func (s *IdeaServiceImpl) DeleteFolder(ctx context.Context, userID, folderID uint64) error {
	affected, err := s.folderRepo.DeleteFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFolderNotFound
	}
	return nil
}

func (s *IdeaServiceImpl) ownedIdea(ctx context.Context, userID, ideaID uint64) (*model.Idea, error) {
	if userID == 0 {
		return nil, ErrAuthRequired
	}
	idea, err := s.ideaRepo.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, ErrIdeaNotFound
	}
	if idea.UserID != userID {
		return nil, UnauthorizedError
	}
	return idea, nil
}

func (s *IdeaServiceImpl) checkFolder(ctx context.Context, userID uint64, folderID *uint64) error {
	if folderID == nil || *folderID == 0 {
		return nil
	}
	folder, err := s.folderRepo.GetFolder(ctx, *folderID)
	if err != nil {
		return err
	}
	if folder == nil || folder.UserID != userID {
		return ErrFolderNotFound
	}
	return nil
}

func (s *IdeaServiceImpl) publishIdea(ctx context.Context, typ feed.EventType, ideaID uint64) *model.Idea {
	idea, err := s.ideaRepo.GetIdea(ctx, ideaID)
	if err != nil || idea == nil {
		return nil
	}
	s.publisher.Publish(ctx, typ, feed.TableIdeas, idea, nil)
	return idea
}

func (s *IdeaServiceImpl) loadPostDTO(ctx context.Context, post *model.CommunityPost) *dto.PostDTO {
	if full, err := s.postRepo.GetPost(ctx, post.ID); err == nil && full != nil {
		return toPostDTO(full)
	}
	return toPostDTO(post)
}

func newPostFromIdea(idea *model.Idea, channel string) *model.CommunityPost {
	return &model.CommunityPost{
		UserID:  idea.UserID,
		Title:   idea.Title,
		Content: idea.Content,
		Channel: channel,
		Tags:    idea.Tags,
	}
}
