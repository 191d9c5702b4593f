package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrInvalidID 通知 ID 不是合法的 ObjectID
	ErrInvalidID = errors.New("invalid notification id")
	// ErrNotFound 通知不存在或不属于该用户
	ErrNotFound = errors.New("notification not found")
)

// NotificationFilter 列表过滤条件，零值表示不过滤
type NotificationFilter struct {
	UnreadOnly bool
	Type       int8
}

type SysBoxRepo interface {
	CreateNotification(ctx context.Context, msg *SysBoxModel) error
	ListNotifications(ctx context.Context, userID uint64, filter NotificationFilter, limit, offset int64) ([]*SysBoxModel, error)
	MarkRead(ctx context.Context, userID uint64, msgID string) error
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	DeleteNotification(ctx context.Context, userID uint64, msgID string) error
	CountUnread(ctx context.Context, userID uint64) (int64, error)
}

type sysBoxRepoImpl struct {
	col *mongo.Collection
}

const sysBoxCollection = "sys_box"

func NewSysBoxRepo(db *mongo.Database) SysBoxRepo {
	return &sysBoxRepoImpl{col: db.Collection(sysBoxCollection)}
}

// EnsureIndexes 列表与未读数都按 receiver_id 查询
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(sysBoxCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "receiver_id", Value: 1},
			{Key: "is_read", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	return err
}

func (s *sysBoxRepoImpl) CreateNotification(ctx context.Context, msg *SysBoxModel) error {
	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return nil
}

// ListNotifications 按时间倒序分页
func (s *sysBoxRepoImpl) ListNotifications(ctx context.Context, userID uint64, filter NotificationFilter, limit, offset int64) ([]*SysBoxModel, error) {
	query := bson.M{"receiver_id": userID}
	if filter.UnreadOnly {
		query["is_read"] = false
	}
	if filter.Type > 0 {
		query["type"] = filter.Type
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*SysBoxModel, 0, limit)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *sysBoxRepoImpl) MarkRead(ctx context.Context, userID uint64, msgID string) error {
	objectID, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return ErrInvalidID
	}
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": objectID, "receiver_id": userID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead 返回本次被标记的条数
func (s *sysBoxRepoImpl) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{"receiver_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *sysBoxRepoImpl) DeleteNotification(ctx context.Context, userID uint64, msgID string) error {
	objectID, err := primitive.ObjectIDFromHex(msgID)
	if err != nil {
		return ErrInvalidID
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": objectID, "receiver_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sysBoxRepoImpl) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"receiver_id": userID, "is_read": false})
}
