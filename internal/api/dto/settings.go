package dto

// SettingsDTO 用户偏好
type SettingsDTO struct {
	Theme                 string `json:"theme"`
	Language              string `json:"language"`
	EmailNotifications    bool   `json:"email_notifications"`
	PushNotifications     bool   `json:"push_notifications"`
	NotifyOnLike          bool   `json:"notify_on_like"`
	NotifyOnComment       bool   `json:"notify_on_comment"`
	NotifyOnCollabRequest bool   `json:"notify_on_collab_request"`
}

// UpdateSettingsDTO 偏好的部分更新
type UpdateSettingsDTO struct {
	Theme                 *string `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language              *string `json:"language" validate:"omitempty,min=2,max=10"`
	EmailNotifications    *bool   `json:"email_notifications"`
	PushNotifications     *bool   `json:"push_notifications"`
	NotifyOnLike          *bool   `json:"notify_on_like"`
	NotifyOnComment       *bool   `json:"notify_on_comment"`
	NotifyOnCollabRequest *bool   `json:"notify_on_collab_request"`
}
