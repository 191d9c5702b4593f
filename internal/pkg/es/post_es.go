package es

import "time"

// PostES 写入 ES 的社区帖子文档
type PostES struct {
	ID            uint64    `json:"id"`
	UserID        uint64    `json:"user_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Channel       string    `json:"channel"`
	Tags          []string  `json:"tags"`
	AuthorName    string    `json:"author_name"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	IsPinned      bool      `json:"is_pinned"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
