package feed

import (
	"IdeaVault/internal/pkg/redis"
	"context"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBus 基于 redis pub/sub 的跨实例总线
type RedisBus struct{}

func NewRedisBus() *RedisBus {
	return &RedisBus{}
}

func (RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return redis.Publish(ctx, channel, payload)
}

func (RedisBus) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ps, err := redis.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	s := &redisSub{ps: ps, ch: make(chan []byte, 64)}
	go s.pump(ps.Channel())
	return s, nil
}

type redisSub struct {
	ps   *goredis.PubSub
	ch   chan []byte
	once sync.Once
}

func (s *redisSub) pump(in <-chan *goredis.Message) {
	defer close(s.ch)
	for msg := range in {
		s.ch <- []byte(msg.Payload)
	}
}

func (s *redisSub) Messages() <-chan []byte {
	return s.ch
}

// Close 关闭 PubSub 后 redis 的消息通道随之关闭，pump 退出
func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ps.Close()
	})
	return err
}
