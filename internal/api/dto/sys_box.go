package dto

import "time"

// NotificationDTO 系统通知，SenderID 为 0 表示系统发出
type NotificationDTO struct {
	ID        string         `json:"id"`
	Type      int8           `json:"type"`
	Sender    *AuthorDTO     `json:"sender,omitempty"`
	TargetID  uint64         `json:"target_id"`
	Content   string         `json:"content"`
	Payload   map[string]any `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarkAllReadDTO 一键已读的结果
type MarkAllReadDTO struct {
	Updated int64 `json:"updated"`
}
