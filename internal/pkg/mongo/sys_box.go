package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 通知类型
const (
	NotifyPostLike        int8 = 1
	NotifyIdeaLike        int8 = 2
	NotifyPostComment     int8 = 3
	NotifyIdeaComment     int8 = 4
	NotifyCollabRequest   int8 = 5
	NotifyCollabAccepted  int8 = 6
	NotifyCollabRejected  int8 = 7
	NotifyMembershipEnded int8 = 8
)

// SysBoxModel 系统通知模型
type SysBoxModel struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiver_id"`
	SenderID   uint64             `bson:"sender_id" json:"sender_id"` // 系统通知为 0
	Type       int8               `bson:"type" json:"type"`
	TargetID   uint64             `bson:"target_id" json:"target_id"`
	Content    string             `bson:"content" json:"content"`
	Payload    map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	IsRead     bool               `bson:"is_read" json:"is_read"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
