package dto

import "time"

// ProfileDTO 用户公开资料
type ProfileDTO struct {
	UserID            uint64    `json:"user_id"`
	Username          string    `json:"username"`
	AvatarURL         string    `json:"avatar_url"`
	Bio               string    `json:"bio"`
	IsBot             bool      `json:"is_bot"`
	OnboardingDone    bool      `json:"onboarding_done"`
	TutorialCompleted bool      `json:"tutorial_completed"`
	CreatedAt         time.Time `json:"created_at"`
}

// UpdateProfileDTO 修改资料
type UpdateProfileDTO struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=30"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
}

// AvatarDTO 头像上传结果
type AvatarDTO struct {
	AvatarURL string `json:"avatar_url"`
}

// AuthorDTO 内容作者的精简资料
type AuthorDTO struct {
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	IsBot     bool   `json:"is_bot"`
}
