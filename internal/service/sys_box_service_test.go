package service

import (
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/testutil"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysBox_ListAndRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.mkUser(t, "owner")
	fan := env.mkUser(t, "fan")

	store := &testutil.SysBoxStore{}
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateNotification(ctx, &mongo.SysBoxModel{
		ReceiverID: owner, SenderID: fan, Type: mongo.NotifyPostLike, TargetID: 7, CreatedAt: base,
	}))
	require.NoError(t, store.CreateNotification(ctx, &mongo.SysBoxModel{
		ReceiverID: owner, Type: mongo.NotifyMembershipEnded, CreatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, store.CreateNotification(ctx, &mongo.SysBoxModel{
		ReceiverID: fan, SenderID: owner, Type: mongo.NotifyPostComment, CreatedAt: base,
	}))

	svc := NewSysBoxService(store, env.profiles)

	list, err := svc.ListNotifications(ctx, owner, mongo.NotificationFilter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, mongo.NotifyMembershipEnded, list[0].Type)
	assert.Nil(t, list[0].Sender)
	require.NotNil(t, list[1].Sender)
	assert.Equal(t, "fan", list[1].Sender.Username)
	assert.Equal(t, uint64(7), list[1].TargetID)

	likes, err := svc.ListNotifications(ctx, owner, mongo.NotificationFilter{Type: mongo.NotifyPostLike}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	unread, err := svc.UnreadCount(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread.UnreadCount)

	require.NoError(t, svc.MarkRead(ctx, owner, list[1].ID))
	onlyUnread, err := svc.ListNotifications(ctx, owner, mongo.NotificationFilter{UnreadOnly: true}, 1, 20)
	require.NoError(t, err)
	require.Len(t, onlyUnread, 1)
	assert.Equal(t, list[0].ID, onlyUnread[0].ID)

	// 他人的通知不可操作
	assert.ErrorIs(t, svc.MarkRead(ctx, fan, list[0].ID), ErrSysBoxNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, owner, "not-an-object-id"), ErrParamInvalid)

	res, err := svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Updated)

	fanUnread, err := svc.UnreadCount(ctx, fan)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fanUnread.UnreadCount)
}

func TestSysBox_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.mkUser(t, "owner")
	other := env.mkUser(t, "other")

	store := &testutil.SysBoxStore{}
	msg := &mongo.SysBoxModel{ReceiverID: owner, Type: mongo.NotifyCollabRequest, CreatedAt: time.Now()}
	require.NoError(t, store.CreateNotification(ctx, msg))
	svc := NewSysBoxService(store, env.profiles)

	assert.ErrorIs(t, svc.DeleteNotification(ctx, other, msg.ID.Hex()), ErrSysBoxNotFound)
	require.NoError(t, svc.DeleteNotification(ctx, owner, msg.ID.Hex()))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, svc.DeleteNotification(ctx, owner, msg.ID.Hex()), ErrSysBoxNotFound)

	_, err := svc.ListNotifications(ctx, 0, mongo.NotificationFilter{}, 1, 20)
	assert.ErrorIs(t, err, ErrAuthRequired)
}
