package job

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/testutil"
	"IdeaVault/internal/repository"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterSyncRepairsDrift(t *testing.T) {
	db := testutil.NewDB(t)
	mr := testutil.NewRedis(t)
	ctx := context.Background()

	post := &model.CommunityPost{UserID: 1, Title: "drift", Channel: "general", LikesCount: 7}
	require.NoError(t, repository.NewPostRepo(db).CreatePost(ctx, post))
	// 明细行与计数列不一致
	require.NoError(t, db.Create(&model.PostLike{UserID: 2, PostID: post.ID}).Error)
	require.NoError(t, db.Omit("Author").Create(&model.PostComment{UserID: 2, PostID: post.ID, Content: "hi"}).Error)

	id := strconv.FormatUint(post.ID, 10)
	_, err := mr.SAdd(consts.PostDirtyKey, id)
	require.NoError(t, err)
	require.NoError(t, mr.Set(consts.PostLikeKey+id, "7"))

	NewCounterSyncJob(repository.NewInteractionRepo(db)).Run()

	stored := &model.CommunityPost{}
	require.NoError(t, db.First(stored, post.ID).Error)
	assert.Equal(t, 1, stored.LikesCount)
	assert.Equal(t, 1, stored.CommentsCount)

	likes, err := mr.Get(consts.PostLikeKey + id)
	require.NoError(t, err)
	assert.Equal(t, "1", likes)
	comments, err := mr.Get(consts.PostCommentKey + id)
	require.NoError(t, err)
	assert.Equal(t, "1", comments)

	assert.False(t, mr.Exists(consts.PostDirtyKey))
	assert.False(t, mr.Exists(consts.PostDirtyKey+":processing"))
	assert.False(t, mr.Exists(consts.CounterSyncLock))
}

func TestCounterSyncSkipsWhenLocked(t *testing.T) {
	db := testutil.NewDB(t)
	mr := testutil.NewRedis(t)

	require.NoError(t, mr.Set(consts.CounterSyncLock, "other-instance"))
	_, err := mr.SAdd(consts.IdeaDirtyKey, "1")
	require.NoError(t, err)

	NewCounterSyncJob(repository.NewInteractionRepo(db)).Run()

	ok, err := mr.SIsMember(consts.IdeaDirtyKey, "1")
	require.NoError(t, err)
	assert.True(t, ok)
}
