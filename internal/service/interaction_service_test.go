package service

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, fan := env.mkUser(t, "owner"), env.mkUser(t, "fan")
	post := env.mkPost(t, owner, "first")
	svc := env.interactionService()

	res, err := svc.ToggleLike(ctx, fan, consts.TargetPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "liked", res.Action)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikesCount)

	key := consts.PostLikeKey + strconv.FormatUint(post.ID, 10)
	cached, err := env.mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", cached)
	dirty, err := env.mr.SIsMember(consts.PostDirtyKey, strconv.FormatUint(post.ID, 10))
	require.NoError(t, err)
	assert.True(t, dirty)

	res, err = svc.ToggleLike(ctx, fan, consts.TargetPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "unliked", res.Action)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikesCount)

	stored, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.LikesCount)

	liked, err := env.interactions.CheckLikeExists(ctx, consts.TargetPost, fan, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLikeRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	owner := env.mkUser(t, "owner")
	post := env.mkPost(t, owner, "first")

	_, err := env.interactionService().ToggleLike(context.Background(), 0, consts.TargetPost, post.ID)
	assert.ErrorIs(t, err, ErrAuthRequired)

	count, err := env.interactions.GetLikeCount(context.Background(), consts.TargetPost, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestToggleLikeRejectsUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	fan := env.mkUser(t, "fan")
	svc := env.interactionService()

	_, err := svc.ToggleLike(context.Background(), fan, consts.TargetPost, 404)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.ToggleLike(context.Background(), fan, "video", 1)
	assert.ErrorIs(t, err, ErrTargetInvalid)
}

func TestToggleFavoriteAndState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, fan := env.mkUser(t, "owner"), env.mkUser(t, "fan")
	post := env.mkPost(t, owner, "bookmark me")
	svc := env.interactionService()

	res, err := svc.ToggleFavorite(ctx, fan, consts.ItemTypeCommunityPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "favorited", res.Action)

	favs, err := svc.ListFavorites(ctx, fan, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.NotNil(t, favs[0].Post)
	assert.Equal(t, post.ID, favs[0].Post.ID)

	_, err = svc.ToggleLike(ctx, fan, consts.TargetPost, post.ID)
	require.NoError(t, err)
	state, err := svc.GetInteractionState(ctx, fan, consts.TargetPost, post.ID)
	require.NoError(t, err)
	assert.True(t, state.IsLiked)
	assert.True(t, state.IsFavorited)
	assert.Equal(t, 1, state.LikesCount)

	res, err = svc.ToggleFavorite(ctx, fan, consts.ItemTypeCommunityPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "unfavorited", res.Action)
	assert.False(t, res.Favorited)

	_, err = svc.ToggleFavorite(ctx, fan, "video", post.ID)
	assert.ErrorIs(t, err, ErrTargetInvalid)
}

func TestCommentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, fan := env.mkUser(t, "owner"), env.mkUser(t, "fan")
	post := env.mkPost(t, owner, "discuss")
	svc := env.interactionService()

	comment, err := svc.CreateComment(ctx, fan, consts.TargetPost, post.ID, "nice idea")
	require.NoError(t, err)
	assert.Equal(t, "nice idea", comment.Content)

	stored, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentsCount)

	list, err := svc.ListComments(ctx, 0, consts.TargetPost, post.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// 只有作者可以删除
	assert.ErrorIs(t, svc.DeleteComment(ctx, owner, consts.TargetPost, comment.ID), UnauthorizedError)
	require.NoError(t, svc.DeleteComment(ctx, fan, consts.TargetPost, comment.ID))

	stored, err = env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentsCount)
}

func TestPrivateIdeaHiddenFromOthers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, stranger := env.mkUser(t, "owner"), env.mkUser(t, "stranger")
	idea := &model.Idea{UserID: owner, Title: "private", Content: "just mine"}
	require.NoError(t, env.ideas.CreateIdea(ctx, idea))
	svc := env.interactionService()

	// 作者本人可以互动
	_, err := svc.CreateComment(ctx, owner, consts.TargetIdea, idea.ID, "note to self")
	require.NoError(t, err)
	own, err := svc.ListComments(ctx, owner, consts.TargetIdea, idea.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	for _, viewer := range []uint64{0, stranger} {
		_, err = svc.ListComments(ctx, viewer, consts.TargetIdea, idea.ID, 1, 10)
		assert.ErrorIs(t, err, ErrIdeaNotFound)
		_, err = svc.GetInteractionState(ctx, viewer, consts.TargetIdea, idea.ID)
		assert.ErrorIs(t, err, ErrIdeaNotFound)
	}
	_, err = svc.ToggleLike(ctx, stranger, consts.TargetIdea, idea.ID)
	assert.ErrorIs(t, err, ErrIdeaNotFound)
	_, err = svc.ToggleFavorite(ctx, stranger, consts.ItemTypeIdea, idea.ID)
	assert.ErrorIs(t, err, ErrIdeaNotFound)
	_, err = svc.CreateComment(ctx, stranger, consts.TargetIdea, idea.ID, "peek")
	assert.ErrorIs(t, err, ErrIdeaNotFound)
	assert.Equal(t, int64(1), countRows(t, env, &model.IdeaComment{}))

	// 分享后对所有人可见
	require.NoError(t, env.db.Model(&model.Idea{}).Where("id = ?", idea.ID).
		Update("shared_to_community", true).Error)
	res, err := svc.ToggleLike(ctx, stranger, consts.TargetIdea, idea.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	list, err := svc.ListComments(ctx, 0, consts.TargetIdea, idea.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	fav, err := svc.ToggleFavorite(ctx, stranger, consts.ItemTypeIdea, idea.ID)
	require.NoError(t, err)
	assert.True(t, fav.Favorited)

	// 取消分享后已收藏的仍可取消收藏
	require.NoError(t, env.db.Model(&model.Idea{}).Where("id = ?", idea.ID).
		Update("shared_to_community", false).Error)
	fav, err = svc.ToggleFavorite(ctx, stranger, consts.ItemTypeIdea, idea.ID)
	require.NoError(t, err)
	assert.False(t, fav.Favorited)
}
