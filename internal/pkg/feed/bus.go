package feed

import (
	"context"
	"sync"
)

// Bus 事件传输层
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription 单个通道上的订阅，Close 后 Messages 会被关闭
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// MemoryBus 进程内总线，用于单机部署和测试
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string]map[*memorySub]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[*memorySub]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[channel] {
		select {
		case s.ch <- payload:
		default:
			// 慢消费者丢弃，监听者只需要最终重新读取
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, channel string) (Subscription, error) {
	s := &memorySub{bus: b, channel: channel, ch: make(chan []byte, 64)}
	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*memorySub]struct{})
	}
	b.subs[channel][s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

// Subscribers 当前通道上的底层订阅数
func (b *MemoryBus) Subscribers(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

type memorySub struct {
	bus     *MemoryBus
	channel string
	ch      chan []byte
	once    sync.Once
}

func (s *memorySub) Messages() <-chan []byte {
	return s.ch
}

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.channel], s)
		if len(s.bus.subs[s.channel]) == 0 {
			delete(s.bus.subs, s.channel)
		}
		close(s.ch)
		s.bus.mu.Unlock()
	})
	return nil
}
