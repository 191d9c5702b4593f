package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Idea struct {
	ID                uint64     `gorm:"primaryKey" json:"id"`
	UserID            uint64     `gorm:"not null;index:idx_idea_user_deleted" json:"user_id"`
	FolderID          *uint64    `gorm:"index" json:"folder_id"`
	Title             string     `gorm:"type:varchar(255);not null" json:"title"`
	Content           string     `gorm:"type:text;not null" json:"content"`
	Tags              Tags       `gorm:"type:varchar(1024)" json:"tags"`
	IsDraft           bool       `gorm:"not null;default:false" json:"is_draft"`
	IsDeleted         bool       `gorm:"not null;default:false;index:idx_idea_user_deleted" json:"is_deleted"`
	DeletedAt         *time.Time `json:"deleted_at"`
	SharedToCommunity bool       `gorm:"not null;default:false" json:"shared_to_community"`
	SourceURL         string     `gorm:"type:varchar(1024);not null;default:''" json:"source_url"`
	LikesCount        int        `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount     int        `gorm:"not null;default:0" json:"comments_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Idea) TableName() string {
	return "ideas"
}

// Tags 以 JSON 数组存储的标签
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	return string(b), err
}

func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(t))
}
