package model

import (
	"time"
)

type PostComment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	PostID    uint64    `gorm:"not null;index:idx_post_comment_post_id" json:"post_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:varchar(2000);not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Author Profile `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (PostComment) TableName() string {
	return "community_post_comments"
}

type IdeaComment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	IdeaID    uint64    `gorm:"not null;index:idx_idea_comment_idea_id" json:"idea_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	Content   string    `gorm:"type:varchar(2000);not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Author Profile `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (IdeaComment) TableName() string {
	return "idea_comments"
}
