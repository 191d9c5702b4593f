package dto

import "time"

// MembershipDTO 会员状态
type MembershipDTO struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"user_id"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	IsPro       bool       `json:"is_pro"`
	StartedAt   *time.Time `json:"started_at"`
	EndsAt      *time.Time `json:"ends_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

// CheckoutReq 发起支付
type CheckoutReq struct {
	Tier string `json:"tier" binding:"required,oneof=pro"`
}

// CheckoutDTO 支付会话
type CheckoutDTO struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CheckoutWebhookReq 支付完成回调
type CheckoutWebhookReq struct {
	SessionID string `json:"session_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// RouteDTO 路由守卫结果
type RouteDTO struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// SeedResultDTO 频道填充结果
type SeedResultDTO struct {
	Message  string `json:"message"`
	Bots     int    `json:"bots"`
	Posts    int    `json:"posts"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
}
