package model

import (
	"time"
)

type CommunityPost struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	UserID        uint64    `gorm:"not null;index:idx_post_user_id" json:"user_id"`
	SourceIdeaID  *uint64   `gorm:"index" json:"source_idea_id"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Channel       string    `gorm:"type:varchar(64);not null;index:idx_post_channel" json:"channel"`
	Tags          Tags      `gorm:"type:varchar(1024)" json:"tags"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	IsPinned      bool      `gorm:"not null;default:false" json:"is_pinned"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Author Profile `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (CommunityPost) TableName() string {
	return "community_posts"
}
