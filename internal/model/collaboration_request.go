package model

import (
	"strconv"
	"time"
)

type CollaborationRequest struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	RequesterID uint64 `gorm:"not null;index:idx_requester" json:"requester_id"`
	OwnerID     uint64 `gorm:"not null;index:idx_owner_status" json:"owner_id"`
	PostID      uint64 `gorm:"not null;index" json:"post_id"`
	Message     string `gorm:"type:varchar(1000);not null;default:''" json:"message"`
	Status      string `gorm:"type:varchar(16);not null;default:'pending';index:idx_owner_status" json:"status"`
	// PendingKey 待处理时为 "requester:post"，处理后置空，唯一索引保证同一用户对同一帖子只有一条待处理申请
	PendingKey *string   `gorm:"type:varchar(64);uniqueIndex:idx_collab_pending" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Post CommunityPost `gorm:"foreignKey:PostID;references:ID" json:"-"`
}

func (CollaborationRequest) TableName() string {
	return "collaboration_requests"
}

// CollabPendingKey 待处理申请的唯一键
func CollabPendingKey(requesterID, postID uint64) *string {
	key := strconv.FormatUint(requesterID, 10) + ":" + strconv.FormatUint(postID, 10)
	return &key
}
