package feed

import (
	"context"
	"sync"
)

type State int32

const (
	StateSubscribed State = iota
	StateRefetching
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateRefetching:
		return "refetching"
	default:
		return "closed"
	}
}

// RefetchFunc 收到变更后重新读取依赖集合，ev 为触发本轮的最后一个事件
type RefetchFunc func(ctx context.Context, ev Event)

// Listener 单个依赖集合的监听者
//
// 重新读取进行中到达的事件合并为一次额外的重新读取。
type Listener struct {
	key     Key
	refetch RefetchFunc

	mu      sync.Mutex
	state   State
	pending bool
	last    Event

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// Listen 通过注册表订阅 key，ctx 取消或 Close 时结束
func Listen(ctx context.Context, reg *Registry, key Key, refetch RefetchFunc) (*Listener, error) {
	lctx, cancel := context.WithCancel(ctx)
	l := &Listener{key: key, refetch: refetch, ctx: lctx, cancel: cancel}

	unsub, err := reg.Subscribe(lctx, key, l.notify)
	if err != nil {
		cancel()
		return nil, err
	}
	l.unsubscribe = unsub
	return l, nil
}

func (l *Listener) Key() Key {
	return l.key
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listener) notify(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = ev
	switch l.state {
	case StateClosed:
		return
	case StateRefetching:
		l.pending = true
		return
	}

	l.state = StateRefetching
	l.wg.Add(1)
	go l.run()
}

func (l *Listener) run() {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		ev := l.last
		l.mu.Unlock()

		l.refetch(l.ctx, ev)

		l.mu.Lock()
		switch {
		case l.state == StateClosed:
			l.mu.Unlock()
			return
		case l.pending:
			l.pending = false
			l.mu.Unlock()
		default:
			l.state = StateSubscribed
			l.mu.Unlock()
			return
		}
	}
}

// Close 退订并等待进行中的重新读取结束
func (l *Listener) Close() {
	l.mu.Lock()
	if l.state == StateClosed {
		l.mu.Unlock()
		return
	}
	l.state = StateClosed
	l.pending = false
	l.mu.Unlock()

	l.unsubscribe()
	l.cancel()
	l.wg.Wait()
}
