package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestCollaborationRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, guest := env.mkUser(t, "owner"), env.mkUser(t, "guest")
	post := env.mkPost(t, owner, "Open hardware lab")
	svc := env.collaborationService()

	_, err := svc.RequestCollaboration(ctx, owner, &dto.CollaborationReq{PostID: post.ID})
	assert.ErrorIs(t, err, ErrCollabSelf)

	_, err = svc.RequestCollaboration(ctx, guest, &dto.CollaborationReq{PostID: 999})
	assert.ErrorIs(t, err, ErrPostNotFound)

	req, err := svc.RequestCollaboration(ctx, guest, &dto.CollaborationReq{PostID: post.ID, Message: "  count me in "})
	require.NoError(t, err)
	assert.Equal(t, consts.CollabPending, req.Status)
	assert.Equal(t, owner, req.OwnerID)
	assert.Equal(t, "count me in", req.Message)
	assert.Equal(t, post.Title, req.PostTitle)

	_, err = svc.RequestCollaboration(ctx, guest, &dto.CollaborationReq{PostID: post.ID})
	assert.ErrorIs(t, err, ErrCollabPending)

	incoming, err := svc.ListIncoming(ctx, owner, consts.CollabPending, 1, 10)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, guest, incoming[0].RequesterID)

	outgoing, err := svc.ListOutgoing(ctx, guest, 1, 10)
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)

	_, err = svc.ListIncoming(ctx, owner, "maybe", 1, 10)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestFinalizeCollaborationOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, guest := env.mkUser(t, "owner"), env.mkUser(t, "guest")
	post := env.mkPost(t, owner, "Community garden")
	svc := env.collaborationService()

	req, err := svc.RequestCollaboration(ctx, guest, &dto.CollaborationReq{PostID: post.ID})
	require.NoError(t, err)

	// 只有帖子作者能处理
	_, err = svc.AcceptRequest(ctx, guest, req.ID)
	assert.ErrorIs(t, err, ErrCollabNotFound)

	accepted, err := svc.AcceptRequest(ctx, owner, req.ID)
	require.NoError(t, err)
	assert.Equal(t, consts.CollabAccepted, accepted.Status)

	_, err = svc.RejectRequest(ctx, owner, req.ID)
	assert.ErrorIs(t, err, ErrCollabProcessed)
	_, err = svc.AcceptRequest(ctx, owner, req.ID)
	assert.ErrorIs(t, err, ErrCollabProcessed)

	// 处理完成后可以再次申请
	again, err := svc.RequestCollaboration(ctx, guest, &dto.CollaborationReq{PostID: post.ID})
	require.NoError(t, err)
	rejected, err := svc.RejectRequest(ctx, owner, again.ID)
	require.NoError(t, err)
	assert.Equal(t, consts.CollabRejected, rejected.Status)
}

func TestConcurrentRequestsLeaveOnePending(t *testing.T) {
	env := newTestEnv(t)
	owner, guest := env.mkUser(t, "owner"), env.mkUser(t, "guest")
	post := env.mkPost(t, owner, "Shared studio")
	svc := env.collaborationService()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestCollaboration(context.Background(), guest, &dto.CollaborationReq{PostID: post.ID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrCollabPending)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(1), countRows(t, env, &model.CollaborationRequest{}))
}
