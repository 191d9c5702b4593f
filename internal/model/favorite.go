package model

import (
	"time"
)

type Favorite struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_user_item" json:"user_id"`
	ItemID    uint64    `gorm:"not null;uniqueIndex:idx_user_item" json:"item_id"`
	ItemType  string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_user_item" json:"item_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
