package service

import (
	"IdeaVault/internal/api/dto"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageThreadAndUnread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, bob, eve := env.mkUser(t, "alice"), env.mkUser(t, "bob"), env.mkUser(t, "eve")
	svc := env.messageService()

	_, err := svc.SendMessage(ctx, alice, &dto.SendMessageDTO{RecipientID: alice, Content: "me"})
	assert.ErrorIs(t, err, ErrRecipientInvalid)
	_, err = svc.SendMessage(ctx, alice, &dto.SendMessageDTO{RecipientID: 999, Content: "ghost"})
	assert.ErrorIs(t, err, ErrRecipientInvalid)

	first, err := svc.SendMessage(ctx, alice, &dto.SendMessageDTO{RecipientID: bob, Content: "hi bob"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, first.ThreadID)

	reply, err := svc.SendMessage(ctx, bob, &dto.SendMessageDTO{RecipientID: alice, Content: "hi alice", ParentID: &first.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, reply.ThreadID)

	// 第三方不能挂到别人的会话上
	_, err = svc.SendMessage(ctx, eve, &dto.SendMessageDTO{RecipientID: bob, Content: "butt in", ParentID: &first.ID})
	assert.ErrorIs(t, err, ErrMessageNotFound)

	thread, err := svc.GetThread(ctx, alice, first.ThreadID)
	require.NoError(t, err)
	assert.Len(t, thread, 2)
	_, err = svc.GetThread(ctx, eve, first.ThreadID)
	assert.ErrorIs(t, err, ErrThreadNotFound)

	unread, err := svc.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread.UnreadCount)

	assert.ErrorIs(t, svc.MarkRead(ctx, alice, first.ID), ErrMessageNotFound)
	require.NoError(t, svc.MarkRead(ctx, bob, first.ID))

	unread, err = svc.UnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, unread.UnreadCount)

	inbox, err := svc.ListInbox(ctx, alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, reply.ID, inbox[0].Latest.ID)
	assert.EqualValues(t, 1, inbox[0].UnreadCount)

	require.NoError(t, svc.MarkThreadRead(ctx, alice, first.ThreadID))
	unread, err = svc.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, unread.UnreadCount)
}
