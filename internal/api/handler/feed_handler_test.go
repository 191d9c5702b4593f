package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/feed"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type feedServer struct {
	server    *httptest.Server
	publisher *feed.Publisher
}

func newFeedServer(t *testing.T, userID uint64, readers map[string]SnapshotReader) *feedServer {
	t.Helper()
	bus := feed.NewMemoryBus()
	h := NewFeedHandler(feed.NewRegistry(bus), readers)

	r := gin.New()
	r.GET("/api/feed", func(c *gin.Context) {
		c.Set("user_id", userID)
	}, h.Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &feedServer{server: srv, publisher: feed.NewPublisher(bus)}
}

func (s *feedServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg dto.FeedClientMsg) {
	t.Helper()
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestFeedPrivateSubscriptionIsScopedToCaller(t *testing.T) {
	readers := map[string]SnapshotReader{
		feed.TableIdeas: func(_ context.Context, _ uint64, key feed.Key) (any, error) {
			return []string{"idea-of-" + key.Filter}, nil
		},
	}
	s := newFeedServer(t, 5, readers)
	conn := s.dial(t)

	sendMsg(t, conn, dto.FeedClientMsg{Action: "subscribe", Table: feed.TableIdeas, Filter: "user_id=eq.99"})

	ack := readMsg(t, conn)
	assert.Equal(t, "subscribed", ack["type"])
	assert.Equal(t, "user_id=eq.5", ack["filter"])

	snap := readMsg(t, conn)
	assert.Equal(t, "snapshot", snap["type"])
	assert.Equal(t, []any{"idea-of-user_id=eq.5"}, snap["data"])

	s.publisher.Publish(context.Background(), feed.Update, feed.TableIdeas, map[string]any{"id": 1, "user_id": 5}, nil)
	next := readMsg(t, conn)
	assert.Equal(t, "snapshot", next["type"])
	assert.Equal(t, string(feed.Update), next["event"])
}

func TestFeedForwardsChangesWithoutReader(t *testing.T) {
	s := newFeedServer(t, 5, map[string]SnapshotReader{})
	conn := s.dial(t)

	sendMsg(t, conn, dto.FeedClientMsg{Action: "subscribe", Table: feed.TableCommunityPosts, Filter: "channel=eq.design"})
	ack := readMsg(t, conn)
	require.Equal(t, "subscribed", ack["type"])

	// 其他频道的变更不会推送
	s.publisher.Publish(context.Background(), feed.Insert, feed.TableCommunityPosts, map[string]any{"id": 1, "channel": "art"}, nil)
	s.publisher.Publish(context.Background(), feed.Insert, feed.TableCommunityPosts, map[string]any{"id": 2, "channel": "design"}, nil)

	change := readMsg(t, conn)
	assert.Equal(t, "change", change["type"])
	assert.Equal(t, string(feed.Insert), change["event"])
	record := change["data"].(map[string]any)["record"].(map[string]any)
	assert.EqualValues(t, 2, record["id"])

	sendMsg(t, conn, dto.FeedClientMsg{Action: "unsubscribe", Table: feed.TableCommunityPosts, Filter: "channel=eq.design"})
	assert.Equal(t, "unsubscribed", readMsg(t, conn)["type"])
}

func TestFeedRejectsBadRequests(t *testing.T) {
	s := newFeedServer(t, 5, map[string]SnapshotReader{})
	conn := s.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, "error", readMsg(t, conn)["type"])

	sendMsg(t, conn, dto.FeedClientMsg{Action: "subscribe", Table: "secrets"})
	assert.Equal(t, "error", readMsg(t, conn)["type"])

	sendMsg(t, conn, dto.FeedClientMsg{Action: "subscribe", Table: feed.TableCommunityPosts, Filter: "title=eq.x"})
	assert.Equal(t, "error", readMsg(t, conn)["type"])

	sendMsg(t, conn, dto.FeedClientMsg{Action: "explode", Table: feed.TableCommunityPosts})
	assert.Equal(t, "error", readMsg(t, conn)["type"])
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "recipient_id=eq.3",
		scopeKey(feed.Key{Table: feed.TableMessages, Filter: "recipient_id=eq.8"}, 3).Filter)
	assert.Equal(t, "sender_id=eq.3",
		scopeKey(feed.Key{Table: feed.TableMessages, Filter: "sender_id=eq.8"}, 3).Filter)
	// thread_id 不是归属列，回落到收件人
	assert.Equal(t, "recipient_id=eq.3",
		scopeKey(feed.Key{Table: feed.TableMessages, Filter: "thread_id=eq.8"}, 3).Filter)
	assert.Equal(t, "channel=eq.art",
		scopeKey(feed.Key{Table: feed.TableCommunityPosts, Filter: "channel=eq.art"}, 3).Filter)
}
