package dto

import "time"

// CreateIdeaDTO 新建想法，分享到社区时必须指定频道
type CreateIdeaDTO struct {
	Title            string   `json:"title" binding:"required,max=255"`
	Content          string   `json:"content" binding:"max=20000"`
	Tags             []string `json:"tags" binding:"max=20"`
	FolderID         *uint64  `json:"folder_id"`
	IsDraft          bool     `json:"is_draft"`
	ShareToCommunity bool     `json:"share_to_community"`
	Channel          string   `json:"channel"`
}

// UpdateIdeaDTO 想法部分更新
type UpdateIdeaDTO struct {
	Title    *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Content  *string  `json:"content" binding:"omitempty,max=20000"`
	Tags     []string `json:"tags" binding:"omitempty,max=20"`
	FolderID *uint64  `json:"folder_id"`
	IsDraft  *bool    `json:"is_draft"`
}

// ShareIdeaDTO 分享已有想法
type ShareIdeaDTO struct {
	Channel string `json:"channel" binding:"required"`
}

// ImportIdeaDTO 从网页导入
type ImportIdeaDTO struct {
	URL string `json:"url" binding:"required,url"`
}

// IdeaDTO 想法详情
type IdeaDTO struct {
	ID                uint64     `json:"id"`
	UserID            uint64     `json:"user_id"`
	FolderID          *uint64    `json:"folder_id"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Tags              []string   `json:"tags"`
	IsDraft           bool       `json:"is_draft"`
	IsDeleted         bool       `json:"is_deleted"`
	DeletedAt         *time.Time `json:"deleted_at"`
	SharedToCommunity bool       `json:"shared_to_community"`
	SourceURL         string     `json:"source_url,omitempty"`
	LikesCount        int        `json:"likes_count"`
	CommentsCount     int        `json:"comments_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CreateIdeaResultDTO 新建结果，分享时附带社区帖子
type CreateIdeaResultDTO struct {
	Idea *IdeaDTO `json:"idea"`
	Post *PostDTO `json:"post,omitempty"`
}

// FolderDTO 文件夹
type FolderDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FolderReq 新建或重命名文件夹
type FolderReq struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
