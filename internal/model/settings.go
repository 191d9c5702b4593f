package model

import "time"

// Settings 每个用户一行
type Settings struct {
	UserID                uint64    `gorm:"primaryKey" json:"user_id"`
	Theme                 string    `gorm:"type:varchar(16);not null;default:'system'" json:"theme"`
	Language              string    `gorm:"type:varchar(16);not null;default:'en'" json:"language"`
	EmailNotifications    bool      `gorm:"not null" json:"email_notifications"`
	PushNotifications     bool      `gorm:"not null" json:"push_notifications"`
	NotifyOnLike          bool      `gorm:"not null" json:"notify_on_like"`
	NotifyOnComment       bool      `gorm:"not null" json:"notify_on_comment"`
	NotifyOnCollabRequest bool      `gorm:"not null" json:"notify_on_collab_request"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "settings"
}

// DefaultSettings 新用户的默认偏好
func DefaultSettings(userID uint64) *Settings {
	return &Settings{
		UserID:                userID,
		Theme:                 "system",
		Language:              "en",
		EmailNotifications:    true,
		PushNotifications:     true,
		NotifyOnLike:          true,
		NotifyOnComment:       true,
		NotifyOnCollabRequest: true,
	}
}
