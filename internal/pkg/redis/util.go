package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrIfExists 仅在计数已缓存时调整，未缓存的计数下次读取时回源
var incrIfExists = redis.NewScript(`
if redis.call('exists', KEYS[1]) == 1 then
	return redis.call('incrby', KEYS[1], ARGV[1])
end
return nil`)

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，不存在时返回空串
func GetValue(ctx context.Context, key string) (string, error) {
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// GetInt64 获取整型值，不存在时返回 redis.Nil
func GetInt64(ctx context.Context, key string) (int64, error) {
	return Rdb.Get(ctx, key).Int64()
}

// IncrByIfExists 键存在时原子增减，返回是否生效
func IncrByIfExists(ctx context.Context, key string, delta int64) (bool, error) {
	err := incrIfExists.Run(ctx, Rdb, []string{key}, delta).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TryLock 尝试加锁，retryTimes 为 -1 时一直重试
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int) (bool, error) {
	for i := 0; i <= retryTimes || retryTimes == -1; i++ {
		success, err := Rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return false, nil
}

// UnLock 释放锁
func UnLock(ctx context.Context, key string, value interface{}) {
	Rdb.Eval(ctx, "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end", []string{key}, value)
}

// SAddUint64 将 ID 加入集合
func SAddUint64(ctx context.Context, key string, ids ...uint64) error {
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatUint(id, 10)
	}
	return Rdb.SAdd(ctx, key, members...).Err()
}

// GetSet 获取集合
func GetSet(ctx context.Context, key string) ([]string, error) {
	return Rdb.SMembers(ctx, key).Result()
}

// Rename 重命名键
func Rename(ctx context.Context, oldKey string, newKey string) error {
	return Rdb.Rename(ctx, oldKey, newKey).Err()
}

// DeleteKey 删除键
func DeleteKey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return Rdb.Del(ctx, keys...).Err()
}

// Publish 发布消息到频道
func Publish(ctx context.Context, channel string, payload []byte) error {
	return Rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe 订阅频道并等待订阅确认
func Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error) {
	pubsub := Rdb.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}

// GetRdbClient 获取redis客户端
func GetRdbClient() *redis.Client {
	return Rdb
}

// IsNil 判断是否为键不存在
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// KeyInvalidator 以删除键的方式实现缓存失效
type KeyInvalidator struct{}

func (KeyInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	return DeleteKey(ctx, keys...)
}
