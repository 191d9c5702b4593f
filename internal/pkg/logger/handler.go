package logger

import (
	"context"
	log "log/slog"
)

// TeeHandler 将日志分发到多个 Handler
type TeeHandler struct {
	handlers []log.Handler
}

func (s *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	var firstErr error
	for _, h := range s.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TeeHandler{handlers: mapHandlers(s.handlers, func(h log.Handler) log.Handler { return h.WithAttrs(attrs) })}
}

func (s *TeeHandler) WithGroup(name string) log.Handler {
	return &TeeHandler{handlers: mapHandlers(s.handlers, func(h log.Handler) log.Handler { return h.WithGroup(name) })}
}

func mapHandlers(hs []log.Handler, fn func(log.Handler) log.Handler) []log.Handler {
	out := make([]log.Handler, len(hs))
	for i, h := range hs {
		out[i] = fn(h)
	}
	return out
}

// TracedOnlyHandler 只转发带 trace_id 的记录，后台任务噪音不上报
type TracedOnlyHandler struct {
	next log.Handler
}

func (s *TracedOnlyHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *TracedOnlyHandler) Handle(ctx context.Context, r log.Record) error {
	traced := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			traced = true
			return false
		}
		return true
	})
	if !traced {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *TracedOnlyHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TracedOnlyHandler{next: s.next.WithAttrs(attrs)}
}

func (s *TracedOnlyHandler) WithGroup(name string) log.Handler {
	return &TracedOnlyHandler{next: s.next.WithGroup(name)}
}
