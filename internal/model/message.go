package model

import "time"

// Message 私信，ThreadID 为会话首条消息的 ID
type Message struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	SenderID    uint64    `gorm:"not null;index:idx_sender" json:"sender_id"`
	RecipientID uint64    `gorm:"not null;index:idx_recipient_read" json:"recipient_id"`
	ThreadID    uint64    `gorm:"not null;default:0;index:idx_thread" json:"thread_id"`
	ParentID    *uint64   `json:"parent_id"`
	Content     string    `gorm:"type:varchar(4000);not null" json:"content"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_recipient_read" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
