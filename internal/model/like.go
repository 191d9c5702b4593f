package model

import (
	"time"
)

type PostLike struct {
	UserID    uint64    `gorm:"primaryKey" json:"user_id"`
	PostID    uint64    `gorm:"primaryKey;index:idx_post_like_post_id" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string {
	return "community_post_likes"
}

type IdeaLike struct {
	UserID    uint64    `gorm:"primaryKey" json:"user_id"`
	IdeaID    uint64    `gorm:"primaryKey;index:idx_idea_like_idea_id" json:"idea_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (IdeaLike) TableName() string {
	return "idea_likes"
}
