package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/feed"
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait        = 10 * time.Second
	wsPongWait         = 60 * time.Second
	wsPingPeriod       = 30 * time.Second
	maxSubscriptionsWS = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedHandler /api/feed 变更推送
type FeedHandler struct {
	registry *feed.Registry
	readers  map[string]SnapshotReader
}

func NewFeedHandler(registry *feed.Registry, readers map[string]SnapshotReader) *FeedHandler {
	return &FeedHandler{registry: registry, readers: readers}
}

// feedConn 单个 websocket 连接，写操作串行
type feedConn struct {
	conn      *websocket.Conn
	userID    uint64
	writeMu   sync.Mutex
	listeners map[feed.Key]*feed.Listener
}

func (fc *feedConn) send(msg *dto.FeedServerMsg) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	fc.writeMu.Lock()
	defer fc.writeMu.Unlock()
	_ = fc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return fc.conn.WriteMessage(websocket.TextMessage, payload)
}

func (fc *feedConn) ping() error {
	fc.writeMu.Lock()
	defer fc.writeMu.Unlock()
	return fc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// Connect 鉴权由 AuthMiddleware 通过 token 查询参数完成
func (s *FeedHandler) Connect(c *gin.Context) {
	userID := c.GetUint64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	fc := &feedConn{conn: conn, userID: userID, listeners: make(map[feed.Key]*feed.Listener)}
	defer func() {
		cancel()
		for _, l := range fc.listeners {
			l.Close()
		}
		log.Info("用户 feed 连接已断开", "userID", userID)
	}()

	log.Info("用户 feed 连接已建立", "userID", userID)

	go s.keepAlive(ctx, fc)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg dto.FeedClientMsg
		if err = json.Unmarshal(raw, &msg); err != nil {
			_ = fc.send(&dto.FeedServerMsg{Type: "error", Error: "malformed message"})
			continue
		}
		key := scopeKey(feed.Key{Table: msg.Table, Filter: msg.Filter}, userID)

		switch msg.Action {
		case "subscribe":
			err = s.subscribe(ctx, fc, key)
		case "unsubscribe":
			if l, ok := fc.listeners[key]; ok {
				l.Close()
				delete(fc.listeners, key)
			}
			err = fc.send(&dto.FeedServerMsg{Type: "unsubscribed", Table: key.Table, Filter: key.Filter})
		default:
			err = fc.send(&dto.FeedServerMsg{Type: "error", Error: "unknown action"})
		}
		if err != nil {
			log.Warn("feed 指令处理失败", "userID", userID, "action", msg.Action, "err", err)
			return
		}
	}
}

func (s *FeedHandler) subscribe(ctx context.Context, fc *feedConn, key feed.Key) error {
	if _, ok := fc.listeners[key]; ok {
		return fc.send(&dto.FeedServerMsg{Type: "subscribed", Table: key.Table, Filter: key.Filter})
	}
	if len(fc.listeners) >= maxSubscriptionsWS {
		return fc.send(&dto.FeedServerMsg{Type: "error", Table: key.Table, Error: "too many subscriptions"})
	}

	refetch := s.refetch(fc, key)
	l, err := feed.Listen(ctx, s.registry, key, refetch)
	if err != nil {
		return fc.send(&dto.FeedServerMsg{Type: "error", Table: key.Table, Filter: key.Filter, Error: err.Error()})
	}
	fc.listeners[key] = l

	if err = fc.send(&dto.FeedServerMsg{Type: "subscribed", Table: key.Table, Filter: key.Filter}); err != nil {
		return err
	}
	// 订阅成功后先推送一次当前快照
	if _, ok := s.readers[key.Table]; ok {
		refetch(ctx, feed.Event{Table: key.Table})
	}
	return nil
}

// refetch 有读取器的表推送快照，其余表直接转发变更
func (s *FeedHandler) refetch(fc *feedConn, key feed.Key) feed.RefetchFunc {
	reader, ok := s.readers[key.Table]
	return func(ctx context.Context, ev feed.Event) {
		if ctx.Err() != nil {
			return
		}
		msg := &dto.FeedServerMsg{Table: key.Table, Filter: key.Filter, Event: string(ev.Type)}
		if !ok {
			msg.Type = "change"
			msg.Data = ev
		} else {
			data, err := reader(ctx, fc.userID, key)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.WarnContext(ctx, "feed 快照读取失败", "table", key.Table, "filter", key.Filter, "err", err)
				msg.Type = "error"
				msg.Error = err.Error()
			} else {
				msg.Type = "snapshot"
				msg.Data = data
			}
		}
		if err := fc.send(msg); err != nil {
			log.Warn("feed 推送失败", "userID", fc.userID, "err", err)
		}
	}
}

func (s *FeedHandler) keepAlive(ctx context.Context, fc *feedConn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fc.ping(); err != nil {
				return
			}
		}
	}
}
