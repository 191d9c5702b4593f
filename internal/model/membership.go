package model

import "time"

// Membership 会员订阅
type Membership struct {
	ID                uint64     `gorm:"primaryKey" json:"id"`
	UserID            uint64     `gorm:"not null;index:idx_membership_user_status" json:"user_id"`
	Tier              string     `gorm:"type:varchar(16);not null" json:"tier"`
	Status            string     `gorm:"type:varchar(16);not null;index:idx_membership_user_status" json:"status"`
	CheckoutSessionID string     `gorm:"type:varchar(128);index" json:"checkout_session_id,omitempty"`
	StartedAt         *time.Time `json:"started_at"`
	EndsAt            *time.Time `json:"ends_at"`
	CancelledAt       *time.Time `json:"cancelled_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}
