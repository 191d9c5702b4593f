package dto

import "time"

// CollaborationReq 发起协作申请
type CollaborationReq struct {
	PostID  uint64 `json:"post_id" binding:"required"`
	Message string `json:"message" binding:"max=1000"`
}

// CollaborationDTO 协作申请
type CollaborationDTO struct {
	ID          uint64     `json:"id"`
	RequesterID uint64     `json:"requester_id"`
	OwnerID     uint64     `json:"owner_id"`
	PostID      uint64     `json:"post_id"`
	PostTitle   string     `json:"post_title"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	Requester   *AuthorDTO `json:"requester,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
