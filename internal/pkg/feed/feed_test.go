package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type comment struct {
	ID     uint64 `json:"id"`
	PostID uint64 `json:"post_id"`
	UserID uint64 `json:"user_id"`
}

func TestKey_Validate(t *testing.T) {
	assert.NoError(t, Key{Table: TableCommunityPosts}.Validate())
	assert.NoError(t, Eq(TablePostComments, "post_id", 42).Validate())
	assert.Error(t, Key{Table: "unknown"}.Validate())
	assert.Error(t, Key{Table: TablePostComments, Filter: "user_id=eq.1"}.Validate())
	assert.Error(t, Key{Table: TablePostComments, Filter: "post_id=42"}.Validate())
	assert.Equal(t, "feed:community_post_comments:post_id=eq.42", Eq(TablePostComments, "post_id", 42).Channel())
}

func TestChannelsFor_IncludesFilterColumns(t *testing.T) {
	bus := NewMemoryBus()
	tableSub, _ := bus.Subscribe(context.Background(), Key{Table: TablePostComments}.Channel())
	filtered, _ := bus.Subscribe(context.Background(), Eq(TablePostComments, "post_id", 7).Channel())
	other, _ := bus.Subscribe(context.Background(), Eq(TablePostComments, "post_id", 8).Channel())

	NewPublisher(bus).Publish(context.Background(), Insert, TablePostComments, comment{ID: 1, PostID: 7, UserID: 3}, nil)

	assert.Len(t, tableSub.Messages(), 1)
	assert.Len(t, filtered.Messages(), 1)
	assert.Len(t, other.Messages(), 0)
}

func TestRegistry_SharesOneSubscriptionPerKey(t *testing.T) {
	bus := NewMemoryBus()
	reg := NewRegistry(bus)
	key := Eq(TablePostComments, "post_id", 7)

	var a, b atomic.Int32
	unsubA, err := reg.Subscribe(context.Background(), key, func(Event) { a.Add(1) })
	require.NoError(t, err)
	unsubB, err := reg.Subscribe(context.Background(), key, func(Event) { b.Add(1) })
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Active())
	assert.Equal(t, 1, bus.Subscribers(key.Channel()))

	NewPublisher(bus).Publish(context.Background(), Insert, TablePostComments, comment{ID: 1, PostID: 7}, nil)
	assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)

	unsubA()
	unsubA()
	assert.Equal(t, 1, reg.Active())

	unsubB()
	assert.Equal(t, 0, reg.Active())
	assert.Equal(t, 0, bus.Subscribers(key.Channel()))
}

func TestRegistry_RejectsUnknownColumn(t *testing.T) {
	reg := NewRegistry(NewMemoryBus())
	_, err := reg.Subscribe(context.Background(), Key{Table: TableMessages, Filter: "content=eq.x"}, func(Event) {})
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Active())
}

func TestListener_CoalescesEventsDuringRefetch(t *testing.T) {
	bus := NewMemoryBus()
	reg := NewRegistry(bus)
	pub := NewPublisher(bus)
	key := Key{Table: TableCommunityPosts}

	release := make(chan struct{})
	started := make(chan struct{}, 4)
	var calls atomic.Int32
	var mu sync.Mutex
	var seen []EventType

	l, err := Listen(context.Background(), reg, key, func(ctx context.Context, ev Event) {
		n := calls.Add(1)
		mu.Lock()
		seen = append(seen, ev.Type)
		mu.Unlock()
		started <- struct{}{}
		if n == 1 {
			<-release
		}
	})
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	pub.Publish(ctx, Insert, TableCommunityPosts, map[string]any{"id": 1, "channel": "general"}, nil)
	<-started
	assert.Equal(t, StateRefetching, l.State())

	pub.Publish(ctx, Update, TableCommunityPosts, map[string]any{"id": 1, "channel": "general"}, nil)
	pub.Publish(ctx, Delete, TableCommunityPosts, nil, map[string]any{"id": 1, "channel": "general"})
	assert.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.pending && l.last.Type == Delete
	}, time.Second, 5*time.Millisecond)

	close(release)
	<-started

	assert.Eventually(t, func() bool { return l.State() == StateSubscribed }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
	mu.Lock()
	assert.Equal(t, []EventType{Insert, Delete}, seen)
	mu.Unlock()
}

func TestListener_CloseStopsDelivery(t *testing.T) {
	bus := NewMemoryBus()
	reg := NewRegistry(bus)
	var calls atomic.Int32

	l, err := Listen(context.Background(), reg, Key{Table: TableIdeas}, func(context.Context, Event) { calls.Add(1) })
	require.NoError(t, err)

	l.Close()
	l.Close()
	assert.Equal(t, StateClosed, l.State())
	assert.Equal(t, 0, reg.Active())

	NewPublisher(bus).Publish(context.Background(), Insert, TableIdeas, map[string]any{"id": 1, "user_id": 2}, nil)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
