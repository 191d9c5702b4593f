package feed

import (
	"bytes"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
)

// Publisher 在写入提交后把变更广播到整表通道和各过滤列通道
type Publisher struct {
	bus Bus
}

func NewPublisher(bus Bus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish 发布失败只记录日志，不影响已提交的写入
func (p *Publisher) Publish(ctx context.Context, typ EventType, table string, record, old any) {
	if p == nil || p.bus == nil {
		return
	}

	ev := Event{Type: typ, Table: table, TS: time.Now()}
	var err error
	if record != nil {
		if ev.Record, err = json.Marshal(record); err != nil {
			log.WarnContext(ctx, "feed event encode failed", "table", table, "err", err)
			return
		}
	}
	if old != nil {
		if ev.Old, err = json.Marshal(old); err != nil {
			log.WarnContext(ctx, "feed event encode failed", "table", table, "err", err)
			return
		}
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.WarnContext(ctx, "feed event encode failed", "table", table, "err", err)
		return
	}

	for _, ch := range channelsFor(ev) {
		if err = p.bus.Publish(ctx, ch, payload); err != nil {
			log.WarnContext(ctx, "feed publish failed", "channel", ch, "err", err)
		}
	}
}

// channelsFor 整表通道加上新旧行各过滤列取值对应的通道
func channelsFor(ev Event) []string {
	channels := []string{Key{Table: ev.Table}.Channel()}
	seen := map[string]struct{}{channels[0]: {}}

	for _, raw := range []json.RawMessage{ev.Record, ev.Old} {
		if len(raw) == 0 {
			continue
		}
		row, err := decodeRow(raw)
		if err != nil {
			continue
		}
		for _, col := range FilterColumns[ev.Table] {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			ch := Eq(ev.Table, col, formatValue(v)).Channel()
			if _, dup := seen[ch]; dup {
				continue
			}
			seen[ch] = struct{}{}
			channels = append(channels, ch)
		}
	}
	return channels
}

func decodeRow(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var row map[string]any
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	return row, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
