package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.CommunityPost) error
	GetPost(ctx context.Context, id uint64) (*model.CommunityPost, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.CommunityPost, error)
	// ListPosts 置顶优先，其次按创建时间倒序
	ListPosts(ctx context.Context, channel string, limit, offset int) ([]*model.CommunityPost, int64, error)
	ListPostsByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.CommunityPost, error)
	CountByChannel(ctx context.Context) (map[string]int64, error)
	SearchPosts(ctx context.Context, keyword, channel string, limit, offset int) ([]*model.CommunityPost, error)
	// UpdatePost 更新帖子并同步到来源想法，返回被同步的想法
	UpdatePost(ctx context.Context, post *model.CommunityPost, fields map[string]interface{}) (*model.Idea, error)
	// DeletePost 删除帖子并在同一事务内清除来源想法的共享标记，返回被清除的想法
	DeletePost(ctx context.Context, post *model.CommunityPost) (*model.Idea, error)
	SetPinned(ctx context.Context, id uint64, pinned bool) error
	ExistsByTitle(ctx context.Context, userID uint64, channel, title string) (bool, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &PostRepoImpl{db: db}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.CommunityPost) error {
	return s.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.CommunityPost, error) {
	post := &model.CommunityPost{}
	err := s.db.WithContext(ctx).Preload("Author").First(post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

func (s *PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.CommunityPost, error) {
	posts := make([]*model.CommunityPost, 0, len(ids))
	if len(ids) == 0 {
		return posts, nil
	}
	err := s.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) ListPosts(ctx context.Context, channel string, limit, offset int) ([]*model.CommunityPost, int64, error) {
	posts := make([]*model.CommunityPost, 0)
	tx := s.db.WithContext(ctx).Model(&model.CommunityPost{})
	if channel != "" {
		tx = tx.Where("channel = ?", channel)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := tx.Preload("Author").
		Order("is_pinned DESC").Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (s *PostRepoImpl) ListPostsByUser(ctx context.Context, userID uint64, limit, offset int) ([]*model.CommunityPost, error) {
	posts := make([]*model.CommunityPost, 0)
	err := s.db.WithContext(ctx).Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) CountByChannel(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Channel string
		Total   int64
	}
	err := s.db.WithContext(ctx).Model(&model.CommunityPost{}).
		Select("channel, COUNT(*) AS total").
		Group("channel").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Channel] = r.Total
	}
	return out, nil
}

// likeEscaper 以 '!' 为转义符转义 LIKE 通配符
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(keyword string) string {
	return likeEscaper.Replace(keyword)
}

func (s *PostRepoImpl) SearchPosts(ctx context.Context, keyword, channel string, limit, offset int) ([]*model.CommunityPost, error) {
	posts := make([]*model.CommunityPost, 0)
	like := "%" + escapeLike(keyword) + "%"
	tx := s.db.WithContext(ctx).Preload("Author").
		Where("title LIKE ? ESCAPE '!' OR content LIKE ? ESCAPE '!' OR tags LIKE ? ESCAPE '!'", like, like, like)
	if channel != "" {
		tx = tx.Where("channel = ?", channel)
	}
	err := tx.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (s *PostRepoImpl) UpdatePost(ctx context.Context, post *model.CommunityPost, fields map[string]interface{}) (*model.Idea, error) {
	var mirrored *model.Idea
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Omit("Author").Updates(fields).Error; err != nil {
			return pkgerrors.Wrap(err, "update community post")
		}
		if post.SourceIdeaID == nil {
			return nil
		}

		ideaFields := make(map[string]interface{}, 3)
		for _, col := range []string{"title", "content", "tags"} {
			if v, ok := fields[col]; ok {
				ideaFields[col] = v
			}
		}
		if len(ideaFields) == 0 {
			return nil
		}
		result := tx.Model(&model.Idea{}).Where("id = ?", *post.SourceIdeaID).Updates(ideaFields)
		if result.Error != nil {
			return pkgerrors.Wrap(result.Error, "mirror post to idea")
		}
		if result.RowsAffected == 0 {
			return nil
		}
		mirrored = &model.Idea{}
		return tx.First(mirrored, *post.SourceIdeaID).Error
	})
	return mirrored, err
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, post *model.CommunityPost) (*model.Idea, error) {
	var cleared *model.Idea
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := findSourceIdea(tx, post)
		if err != nil {
			return err
		}

		if err = tx.Where("post_id = ?", post.ID).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if err = tx.Where("post_id = ?", post.ID).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
		if err = tx.Where("post_id = ?", post.ID).Delete(&model.CollaborationRequest{}).Error; err != nil {
			return err
		}
		if err = tx.Where("item_id = ? AND item_type = ?", post.ID, consts.ItemTypeCommunityPost).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err = tx.Delete(&model.CommunityPost{}, post.ID).Error; err != nil {
			return pkgerrors.Wrap(err, "delete community post")
		}

		if source == nil {
			return nil
		}
		if err = tx.Model(source).Update("shared_to_community", false).Error; err != nil {
			return pkgerrors.Wrap(err, "clear idea shared flag")
		}
		cleared = source
		return nil
	})
	return cleared, err
}

// findSourceIdea 优先按 source_idea_id 查找，否则按 (标题, 内容, 作者) 在已共享想法中匹配一条
func findSourceIdea(tx *gorm.DB, post *model.CommunityPost) (*model.Idea, error) {
	idea := &model.Idea{}
	var err error
	if post.SourceIdeaID != nil {
		err = tx.Where("id = ?", *post.SourceIdeaID).First(idea).Error
	} else {
		err = tx.Where("user_id = ? AND title = ? AND content = ? AND shared_to_community = ?",
			post.UserID, post.Title, post.Content, true).
			Order("id ASC").
			First(idea).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return idea, nil
}

func (s *PostRepoImpl) SetPinned(ctx context.Context, id uint64, pinned bool) error {
	return s.db.WithContext(ctx).Model(&model.CommunityPost{}).Where("id = ?", id).Update("is_pinned", pinned).Error
}

func (s *PostRepoImpl) ExistsByTitle(ctx context.Context, userID uint64, channel, title string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CommunityPost{}).
		Where("user_id = ? AND channel = ? AND title = ?", userID, channel, title).
		Count(&count).Error
	return count > 0, err
}
