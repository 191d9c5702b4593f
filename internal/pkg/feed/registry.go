package feed

import (
	"context"
	log "log/slog"
	"sync"

	"github.com/goccy/go-json"
)

// Registry 每个订阅键只保留一个底层订阅，由所有监听者共享并按引用计数释放
type Registry struct {
	bus  Bus
	mu   sync.Mutex
	subs map[Key]*shared
	seq  uint64
}

type shared struct {
	sub       Subscription
	listeners map[uint64]func(Event)
}

func NewRegistry(bus Bus) *Registry {
	return &Registry{bus: bus, subs: make(map[Key]*shared)}
}

// Subscribe 注册回调，返回的函数用于退订，可重复调用
func (r *Registry) Subscribe(ctx context.Context, key Key, fn func(Event)) (func(), error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subs[key]
	if !ok {
		sub, err := r.bus.Subscribe(ctx, key.Channel())
		if err != nil {
			return nil, err
		}
		s = &shared{sub: sub, listeners: make(map[uint64]func(Event))}
		r.subs[key] = s
		go r.dispatch(key, s)
	}

	r.seq++
	id := r.seq
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() { r.release(key, id) })
	}, nil
}

// Active 当前底层订阅数量
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *Registry) release(key Key, id uint64) {
	r.mu.Lock()
	s, ok := r.subs[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(s.listeners, id)
	if len(s.listeners) > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.subs, key)
	r.mu.Unlock()

	if err := s.sub.Close(); err != nil {
		log.Warn("feed subscription close failed", "channel", key.Channel(), "err", err)
	}
}

func (r *Registry) dispatch(key Key, s *shared) {
	for payload := range s.sub.Messages() {
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			log.Warn("feed event decode failed", "channel", key.Channel(), "err", err)
			continue
		}

		r.mu.Lock()
		fns := make([]func(Event), 0, len(s.listeners))
		for _, fn := range s.listeners {
			fns = append(fns, fn)
		}
		r.mu.Unlock()

		for _, fn := range fns {
			fn(ev)
		}
	}
}
