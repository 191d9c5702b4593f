package dto

import "time"

// PostDTO 社区帖子
type PostDTO struct {
	ID            uint64     `json:"id"`
	UserID        uint64     `json:"user_id"`
	SourceIdeaID  *uint64    `json:"source_idea_id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Channel       string     `json:"channel"`
	Tags          []string   `json:"tags"`
	LikesCount    int        `json:"likes_count"`
	CommentsCount int        `json:"comments_count"`
	IsPinned      bool       `json:"is_pinned"`
	IsLiked       bool       `json:"is_liked"`
	IsFavorited   bool       `json:"is_favorited"`
	Author        *AuthorDTO `json:"author,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UpdatePostDTO 帖子部分更新
type UpdatePostDTO struct {
	Title   *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Content *string  `json:"content" binding:"omitempty,max=20000"`
	Tags    []string `json:"tags" binding:"omitempty,max=20"`
	Channel *string  `json:"channel"`
}

// PinPostDTO 置顶
type PinPostDTO struct {
	Pinned bool `json:"pinned"`
}

// ChannelDTO 社区频道
type ChannelDTO struct {
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}
