package dto

import "time"

// ToggleLikeDTO 点赞切换结果
type ToggleLikeDTO struct {
	Action     string `json:"action"` // liked | unliked
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

// ToggleFavoriteReq 收藏切换请求
type ToggleFavoriteReq struct {
	ItemType string `json:"item_type" binding:"required,oneof=idea community_post"`
	ItemID   uint64 `json:"item_id" binding:"required"`
}

// ToggleFavoriteDTO 收藏切换结果
type ToggleFavoriteDTO struct {
	Action    string `json:"action"` // favorited | unfavorited
	Favorited bool   `json:"favorited"`
}

// FavoriteDTO 收藏条目，Idea 与 Post 二选一
type FavoriteDTO struct {
	ID        uint64    `json:"id"`
	ItemID    uint64    `json:"item_id"`
	ItemType  string    `json:"item_type"`
	CreatedAt time.Time `json:"created_at"`
	Idea      *IdeaDTO  `json:"idea,omitempty"`
	Post      *PostDTO  `json:"post,omitempty"`
}

// CommentCreateDTO 发表评论
type CommentCreateDTO struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CommentDTO 评论
type CommentDTO struct {
	ID        uint64     `json:"id"`
	TargetID  uint64     `json:"target_id"`
	UserID    uint64     `json:"user_id"`
	Content   string     `json:"content"`
	Author    *AuthorDTO `json:"author,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// InteractionStateDTO 互动计数与当前用户状态
type InteractionStateDTO struct {
	LikesCount    int  `json:"likes_count"`
	CommentsCount int  `json:"comments_count"`
	IsLiked       bool `json:"is_liked"`
	IsFavorited   bool `json:"is_favorited"`
}
