package model

import (
	"time"
)

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex:idx_email"`
	Password  string `gorm:"type:varchar(255);not null"`
	Roles     Roles  `gorm:"type:varchar(255);serializer:json"`
	IsBan     bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Profile Profile `gorm:"foreignKey:UserID;references:ID"`
}

func (User) TableName() string {
	return "users"
}

type Roles []string

func (r Roles) Has(role string) bool {
	for _, v := range r {
		if v == role {
			return true
		}
	}
	return false
}
