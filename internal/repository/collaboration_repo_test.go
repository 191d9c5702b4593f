package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestRejectsSecondPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCollaborationRepo(db)
	ctx := context.Background()
	pending := func() *model.CollaborationRequest {
		return &model.CollaborationRequest{RequesterID: 2, OwnerID: 1, PostID: 10, Status: consts.CollabPending}
	}

	first := pending()
	require.NoError(t, repo.CreateRequest(ctx, first))
	assert.ErrorIs(t, repo.CreateRequest(ctx, pending()), ErrDuplicate)

	// 其他帖子不受影响
	other := pending()
	other.PostID = 11
	require.NoError(t, repo.CreateRequest(ctx, other))

	n, err := repo.FinalizeRequest(ctx, first.ID, 1, consts.CollabRejected)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 处理完毕后可再次申请，且多条已处理记录可以共存
	again := pending()
	require.NoError(t, repo.CreateRequest(ctx, again))
	n, err = repo.FinalizeRequest(ctx, again.ID, 1, consts.CollabAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, repo.CreateRequest(ctx, pending()))

	has, err := repo.HasPending(ctx, 2, 10)
	require.NoError(t, err)
	assert.True(t, has)
}
