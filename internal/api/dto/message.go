package dto

import "time"

// SendMessageDTO 发送私信，ParentID 非空时回复到父消息所在会话
type SendMessageDTO struct {
	RecipientID uint64  `json:"recipient_id" binding:"required"`
	Content     string  `json:"content" binding:"required,min=1,max=4000"`
	ParentID    *uint64 `json:"parent_id"`
}

// MessageDTO 私信
type MessageDTO struct {
	ID          uint64     `json:"id"`
	ThreadID    uint64     `json:"thread_id"`
	ParentID    *uint64    `json:"parent_id"`
	SenderID    uint64     `json:"sender_id"`
	RecipientID uint64     `json:"recipient_id"`
	Content     string     `json:"content"`
	IsRead      bool       `json:"is_read"`
	Sender      *AuthorDTO `json:"sender,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ThreadDTO 收件箱中的会话
type ThreadDTO struct {
	ThreadID    uint64      `json:"thread_id"`
	Peer        *AuthorDTO  `json:"peer"`
	Latest      *MessageDTO `json:"latest"`
	UnreadCount int64       `json:"unread_count"`
}

// UnreadCountDTO 未读数
type UnreadCountDTO struct {
	UnreadCount int64 `json:"unread_count"`
}
