package model

import "time"

// Profile 用户公开资料
type Profile struct {
	UserID            uint64    `gorm:"primaryKey" json:"user_id"`
	Username          string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_username" json:"username"`
	AvatarURL         string    `gorm:"type:varchar(512);default:'default_avatar.png'" json:"avatar_url"`
	Bio               string    `gorm:"type:varchar(500);not null;default:''" json:"bio"`
	IsBot             bool      `gorm:"not null;default:false" json:"is_bot"`
	OnboardingDone    bool      `gorm:"not null;default:false" json:"onboarding_done"`
	TutorialCompleted bool      `gorm:"not null;default:false" json:"tutorial_completed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
