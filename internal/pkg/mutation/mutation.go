// Package mutation 统一的乐观写入流程：先本地预更新，再提交持久化写入，失败时回滚并失效缓存。
package mutation

import (
	"context"
	log "log/slog"
)

// Invalidator 使依赖某次写入的缓存键失效
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Mutation 一次乐观写入的声明
//
// Optimistic 在提交前执行，用于预先调整计数等可见状态；
// Commit 执行持久化写入；
// Rollback 仅在 Optimistic 成功而 Commit 失败时调用；
// Invalidate 为写入结束后（无论成败）需要失效的缓存键；
// OnSuccess 在提交成功后调用，适合发布变更事件。
type Mutation[T any] struct {
	Name       string
	Optimistic func(ctx context.Context) error
	Commit     func(ctx context.Context) (T, error)
	Rollback   func(ctx context.Context)
	Invalidate []string
	OnSuccess  func(ctx context.Context, result T)
}

type Runner struct {
	inv Invalidator
}

func NewRunner(inv Invalidator) *Runner {
	return &Runner{inv: inv}
}

// Run 执行一次写入，不做重试
func Run[T any](ctx context.Context, r *Runner, m Mutation[T]) (T, error) {
	var zero T

	optimistic := false
	if m.Optimistic != nil {
		if err := m.Optimistic(ctx); err != nil {
			// 预更新失败不影响提交
			log.WarnContext(ctx, "optimistic update skipped", "mutation", m.Name, "err", err)
		} else {
			optimistic = true
		}
	}

	result, err := m.Commit(ctx)
	if err != nil {
		if optimistic && m.Rollback != nil {
			m.Rollback(ctx)
		}
		r.invalidate(ctx, m.Invalidate)
		return zero, err
	}

	r.invalidate(ctx, m.Invalidate)
	if m.OnSuccess != nil {
		m.OnSuccess(ctx, result)
	}
	return result, nil
}

func (r *Runner) invalidate(ctx context.Context, keys []string) {
	if r == nil || r.inv == nil || len(keys) == 0 {
		return
	}
	if err := r.inv.Invalidate(ctx, keys...); err != nil {
		log.WarnContext(ctx, "cache invalidation failed", "keys", keys, "err", err)
	}
}
