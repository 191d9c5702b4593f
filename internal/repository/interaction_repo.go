package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"errors"
	"fmt"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrDuplicate 唯一约束冲突，例如重复点赞
var ErrDuplicate = errors.New("duplicate row")

// ErrUnknownTarget 未知的互动目标类型
var ErrUnknownTarget = errors.New("unknown interaction target")

// target 互动目标对应的表结构
type target struct {
	likeTable    string
	commentTable string
	fk           string
	counterTable string
}

var targets = map[string]target{
	consts.TargetPost: {"community_post_likes", "community_post_comments", "post_id", "community_posts"},
	consts.TargetIdea: {"idea_likes", "idea_comments", "idea_id", "ideas"},
}

func lookupTarget(kind string) (target, error) {
	t, ok := targets[kind]
	if !ok {
		return target{}, fmt.Errorf("%w: %s", ErrUnknownTarget, kind)
	}
	return t, nil
}

// Comment 评论的统一视图
type Comment struct {
	ID        uint64
	TargetID  uint64
	UserID    uint64
	Content   string
	CreatedAt time.Time
	Author    *model.Profile
}

type InteractionRepo interface {
	CheckLikeExists(ctx context.Context, kind string, userID, targetID uint64) (bool, error)
	// CreateLike 写入点赞并在同一事务内递增 likes_count，返回新计数
	CreateLike(ctx context.Context, kind string, userID, targetID uint64) (int, error)
	// DeleteLike 删除点赞并递减 likes_count，不会低于 0；未点赞时 deleted 为 false
	DeleteLike(ctx context.Context, kind string, userID, targetID uint64) (deleted bool, count int, err error)
	GetLikeCount(ctx context.Context, kind string, targetID uint64) (int, error)
	GetLikedTargetIDs(ctx context.Context, kind string, userID uint64, targetIDs []uint64) (map[uint64]bool, error)

	CheckFavoriteExists(ctx context.Context, userID, itemID uint64, itemType string) (bool, error)
	CreateFavorite(ctx context.Context, fav *model.Favorite) error
	DeleteFavorite(ctx context.Context, userID, itemID uint64, itemType string) (int64, error)
	ListFavorites(ctx context.Context, userID uint64, itemType string, limit, offset int) ([]*model.Favorite, error)
	GetFavoritedItemIDs(ctx context.Context, userID uint64, itemType string, itemIDs []uint64) (map[uint64]bool, error)

	// CreateComment 写入评论并递增 comments_count
	CreateComment(ctx context.Context, kind string, c *Comment) error
	GetComment(ctx context.Context, kind string, commentID uint64) (*Comment, error)
	// DeleteComment 删除评论并递减 comments_count
	DeleteComment(ctx context.Context, kind string, c *Comment) error
	ListComments(ctx context.Context, kind string, targetID uint64, limit, offset int) ([]*Comment, error)
	GetCommentCount(ctx context.Context, kind string, targetID uint64) (int, error)

	// RecountTargets 依据明细行重算计数，返回重算后的 id → (likes, comments)
	RecountTargets(ctx context.Context, kind string, ids []uint64) (map[uint64][2]int, error)
}

type InteractionRepoImpl struct {
	db *gorm.DB
}

func NewInteractionRepo(db *gorm.DB) InteractionRepo {
	return &InteractionRepoImpl{db: db}
}

func (s *InteractionRepoImpl) CheckLikeExists(ctx context.Context, kind string, userID, targetID uint64) (bool, error) {
	t, err := lookupTarget(kind)
	if err != nil {
		return false, err
	}
	var count int64
	err = s.db.WithContext(ctx).Table(t.likeTable).
		Where("user_id = ? AND "+t.fk+" = ?", userID, targetID).
		Count(&count).Error
	return count > 0, err
}

func (s *InteractionRepoImpl) CreateLike(ctx context.Context, kind string, userID, targetID uint64) (int, error) {
	t, err := lookupTarget(kind)
	if err != nil {
		return 0, err
	}
	var count int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := map[string]interface{}{"user_id": userID, t.fk: targetID, "created_at": time.Now()}
		if err := tx.Table(t.likeTable).Create(row).Error; err != nil {
			if IsDuplicateKey(err) {
				return ErrDuplicate
			}
			return pkgerrors.Wrap(err, "insert like")
		}
		return bumpCounter(tx, t.counterTable, "likes_count", targetID, 1, &count)
	})
	return count, err
}

func (s *InteractionRepoImpl) DeleteLike(ctx context.Context, kind string, userID, targetID uint64) (bool, int, error) {
	t, err := lookupTarget(kind)
	if err != nil {
		return false, 0, err
	}
	var (
		deleted bool
		count   int
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec("DELETE FROM "+t.likeTable+" WHERE user_id = ? AND "+t.fk+" = ?", userID, targetID)
		if result.Error != nil {
			return pkgerrors.Wrap(result.Error, "delete like")
		}
		if result.RowsAffected == 0 {
			return readCounter(tx, t.counterTable, "likes_count", targetID, &count)
		}
		deleted = true
		return bumpCounter(tx, t.counterTable, "likes_count", targetID, -1, &count)
	})
	return deleted, count, err
}

func (s *InteractionRepoImpl) GetLikeCount(ctx context.Context, kind string, targetID uint64) (int, error) {
	t, err := lookupTarget(kind)
	if err != nil {
		return 0, err
	}
	var count int
	err = readCounter(s.db.WithContext(ctx), t.counterTable, "likes_count", targetID, &count)
	return count, err
}

func (s *InteractionRepoImpl) GetLikedTargetIDs(ctx context.Context, kind string, userID uint64, targetIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(targetIDs))
	if userID == 0 || len(targetIDs) == 0 {
		return out, nil
	}
	t, err := lookupTarget(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	err = s.db.WithContext(ctx).Table(t.likeTable).
		Where("user_id = ? AND "+t.fk+" IN ?", userID, targetIDs).
		Pluck(t.fk, &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}

func (s *InteractionRepoImpl) CheckFavoriteExists(ctx context.Context, userID, itemID uint64, itemType string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND item_id = ? AND item_type = ?", userID, itemID, itemType).
		Count(&count).Error
	return count > 0, err
}

func (s *InteractionRepoImpl) CreateFavorite(ctx context.Context, fav *model.Favorite) error {
	if err := s.db.WithContext(ctx).Create(fav).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *InteractionRepoImpl) DeleteFavorite(ctx context.Context, userID, itemID uint64, itemType string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND item_type = ?", userID, itemID, itemType).
		Delete(&model.Favorite{})
	return result.RowsAffected, result.Error
}

func (s *InteractionRepoImpl) ListFavorites(ctx context.Context, userID uint64, itemType string, limit, offset int) ([]*model.Favorite, error) {
	favs := make([]*model.Favorite, 0)
	tx := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if itemType != "" {
		tx = tx.Where("item_type = ?", itemType)
	}
	err := tx.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&favs).Error
	return favs, err
}

func (s *InteractionRepoImpl) GetFavoritedItemIDs(ctx context.Context, userID uint64, itemType string, itemIDs []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool, len(itemIDs))
	if userID == 0 || len(itemIDs) == 0 {
		return out, nil
	}
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND item_type = ? AND item_id IN ?", userID, itemType, itemIDs).
		Pluck("item_id", &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}

func (s *InteractionRepoImpl) CreateComment(ctx context.Context, kind string, c *Comment) error {
	t, err := lookupTarget(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch kind {
		case consts.TargetPost:
			pc := &model.PostComment{PostID: c.TargetID, UserID: c.UserID, Content: c.Content}
			if err := tx.Omit("Author").Create(pc).Error; err != nil {
				return pkgerrors.Wrap(err, "insert post comment")
			}
			c.ID, c.CreatedAt = pc.ID, pc.CreatedAt
		default:
			ic := &model.IdeaComment{IdeaID: c.TargetID, UserID: c.UserID, Content: c.Content}
			if err := tx.Omit("Author").Create(ic).Error; err != nil {
				return pkgerrors.Wrap(err, "insert idea comment")
			}
			c.ID, c.CreatedAt = ic.ID, ic.CreatedAt
		}
		var ignored int
		return bumpCounter(tx, t.counterTable, "comments_count", c.TargetID, 1, &ignored)
	})
}

func (s *InteractionRepoImpl) GetComment(ctx context.Context, kind string, commentID uint64) (*Comment, error) {
	list, err := s.findComments(s.db.WithContext(ctx).Where("id = ?", commentID), kind)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *InteractionRepoImpl) DeleteComment(ctx context.Context, kind string, c *Comment) error {
	t, err := lookupTarget(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec("DELETE FROM "+t.commentTable+" WHERE id = ?", c.ID)
		if result.Error != nil {
			return pkgerrors.Wrap(result.Error, "delete comment")
		}
		if result.RowsAffected == 0 {
			return nil
		}
		var ignored int
		return bumpCounter(tx, t.counterTable, "comments_count", c.TargetID, -1, &ignored)
	})
}

func (s *InteractionRepoImpl) ListComments(ctx context.Context, kind string, targetID uint64, limit, offset int) ([]*Comment, error) {
	t, err := lookupTarget(kind)
	if err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).
		Where(t.fk+" = ?", targetID).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).Offset(offset)
	return s.findComments(q, kind)
}

func (s *InteractionRepoImpl) GetCommentCount(ctx context.Context, kind string, targetID uint64) (int, error) {
	t, err := lookupTarget(kind)
	if err != nil {
		return 0, err
	}
	var count int
	err = readCounter(s.db.WithContext(ctx), t.counterTable, "comments_count", targetID, &count)
	return count, err
}

func (s *InteractionRepoImpl) RecountTargets(ctx context.Context, kind string, ids []uint64) (map[uint64][2]int, error) {
	out := make(map[uint64][2]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	t, err := lookupTarget(kind)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sql := fmt.Sprintf(
			"UPDATE %[1]s SET likes_count = (SELECT COUNT(*) FROM %[2]s WHERE %[2]s.%[4]s = %[1]s.id), "+
				"comments_count = (SELECT COUNT(*) FROM %[3]s WHERE %[3]s.%[4]s = %[1]s.id) WHERE id IN ?",
			t.counterTable, t.likeTable, t.commentTable, t.fk)
		if err := tx.Exec(sql, ids).Error; err != nil {
			return pkgerrors.Wrap(err, "recount")
		}

		var rows []struct {
			ID            uint64
			LikesCount    int
			CommentsCount int
		}
		if err := tx.Table(t.counterTable).Select("id, likes_count, comments_count").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			out[r.ID] = [2]int{r.LikesCount, r.CommentsCount}
		}
		return nil
	})
	return out, err
}

func (s *InteractionRepoImpl) findComments(q *gorm.DB, kind string) ([]*Comment, error) {
	switch kind {
	case consts.TargetPost:
		var rows []*model.PostComment
		if err := q.Preload("Author").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]*Comment, 0, len(rows))
		for _, r := range rows {
			author := r.Author
			out = append(out, &Comment{ID: r.ID, TargetID: r.PostID, UserID: r.UserID, Content: r.Content, CreatedAt: r.CreatedAt, Author: &author})
		}
		return out, nil
	case consts.TargetIdea:
		var rows []*model.IdeaComment
		if err := q.Preload("Author").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]*Comment, 0, len(rows))
		for _, r := range rows {
			author := r.Author
			out = append(out, &Comment{ID: r.ID, TargetID: r.IdeaID, UserID: r.UserID, Content: r.Content, CreatedAt: r.CreatedAt, Author: &author})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, kind)
	}
}

// bumpCounter 计数增减，递减不低于 0，out 返回更新后的值
func bumpCounter(tx *gorm.DB, table, column string, id uint64, delta int, out *int) error {
	expr := gorm.Expr(column+" + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN "+column+" >= ? THEN "+column+" - ? ELSE 0 END", -delta, -delta)
	}
	if err := tx.Table(table).Where("id = ?", id).Update(column, expr).Error; err != nil {
		return pkgerrors.Wrapf(err, "update %s.%s", table, column)
	}
	return readCounter(tx, table, column, id, out)
}

func readCounter(tx *gorm.DB, table, column string, id uint64, out *int) error {
	var v int
	if err := tx.Table(table).Select(column).Where("id = ?", id).Scan(&v).Error; err != nil {
		return err
	}
	*out = v
	return nil
}

// IsDuplicateKey 识别 gorm 翻译后的唯一键冲突以及 MySQL 1062
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
