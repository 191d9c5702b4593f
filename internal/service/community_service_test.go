package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePostClearsSourceIdea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid, fan := env.mkUser(t, "author"), env.mkUser(t, "fan")

	res, err := env.ideaService().CreateIdea(ctx, uid, &dto.CreateIdeaDTO{
		Title: "Shared", ShareToCommunity: true, Channel: "art",
	})
	require.NoError(t, err)
	_, err = env.interactionService().ToggleLike(ctx, fan, consts.TargetPost, res.Post.ID)
	require.NoError(t, err)

	svc := env.communityService()
	assert.ErrorIs(t, svc.DeletePost(ctx, fan, res.Post.ID), UnauthorizedError)
	require.NoError(t, svc.DeletePost(ctx, uid, res.Post.ID))

	post, err := env.posts.GetPost(ctx, res.Post.ID)
	require.NoError(t, err)
	assert.Nil(t, post)

	idea, err := env.ideas.GetIdea(ctx, res.Idea.ID)
	require.NoError(t, err)
	assert.False(t, idea.SharedToCommunity)
	assert.Zero(t, countRows(t, env, &model.PostLike{}))
}

func TestDeletePostWithoutSourceIdea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "author")
	post := env.mkPost(t, uid, "standalone")

	require.NoError(t, env.communityService().DeletePost(ctx, uid, post.ID))
	assert.Zero(t, countRows(t, env, &model.CommunityPost{}))

	assert.ErrorIs(t, env.communityService().DeletePost(ctx, uid, post.ID), ErrPostNotFound)
}

func TestDeletePostMatchesLegacyIdeaByContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "author")

	idea := &model.Idea{UserID: uid, Title: "legacy", Content: "legacy body", SharedToCommunity: true}
	require.NoError(t, env.ideas.CreateIdea(ctx, idea))
	post := env.mkPost(t, uid, "legacy")

	require.NoError(t, env.communityService().DeletePost(ctx, uid, post.ID))
	stored, err := env.ideas.GetIdea(ctx, idea.ID)
	require.NoError(t, err)
	assert.False(t, stored.SharedToCommunity)
}

func TestListPostsAndChannels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid, viewer := env.mkUser(t, "author"), env.mkUser(t, "viewer")
	first := env.mkPost(t, uid, "one")
	env.mkPost(t, uid, "two")
	svc := env.communityService()

	_, err := env.interactionService().ToggleLike(ctx, viewer, consts.TargetPost, first.ID)
	require.NoError(t, err)

	page, err := svc.ListPosts(ctx, viewer, "general", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, p := range page.Items {
		assert.Equal(t, p.ID == first.ID, p.IsLiked)
	}

	_, err = svc.ListPosts(ctx, viewer, "nowhere", 1, 10)
	assert.ErrorIs(t, err, ErrChannelInvalid)

	channels, err := svc.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, len(consts.Channels))
	for _, c := range channels {
		if c.Name == "general" {
			assert.EqualValues(t, 2, c.PostCount)
		}
	}

	found, err := svc.SearchPosts(ctx, 0, "two", "", 1, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "two", found[0].Title)
}

func TestPinPostRequiresOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid, other := env.mkUser(t, "author"), env.mkUser(t, "other")
	post := env.mkPost(t, uid, "pin me")
	svc := env.communityService()

	assert.ErrorIs(t, svc.PinPost(ctx, other, []string{consts.RoleUser}, post.ID, true), UnauthorizedError)
	require.NoError(t, svc.PinPost(ctx, other, []string{consts.RoleAdmin}, post.ID, true))

	stored, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPinned)
}

func TestUpdatePostMirrorsSourceIdea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid, other := env.mkUser(t, "author"), env.mkUser(t, "other")

	res, err := env.ideaService().CreateIdea(ctx, uid, &dto.CreateIdeaDTO{
		Title: "Draft", Content: "old body", ShareToCommunity: true, Channel: "technology",
	})
	require.NoError(t, err)

	svc := env.communityService()
	_, err = svc.UpdatePost(ctx, other, res.Post.ID, &dto.UpdatePostDTO{Title: strPtr("hijack")})
	assert.ErrorIs(t, err, UnauthorizedError)

	updated, err := svc.UpdatePost(ctx, uid, res.Post.ID, &dto.UpdatePostDTO{
		Title: strPtr("Edited"), Content: strPtr("fresh body"), Tags: []string{"rust"}, Channel: strPtr("art"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, "art", updated.Channel)

	idea, err := env.ideas.GetIdea(ctx, res.Idea.ID)
	require.NoError(t, err)
	require.NotNil(t, idea)
	assert.Equal(t, "Edited", idea.Title)
	assert.Equal(t, "fresh body", idea.Content)
	assert.Equal(t, model.Tags{"rust"}, idea.Tags)
	assert.True(t, idea.SharedToCommunity)
}

func TestUpdateStandalonePostTouchesNoIdea(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "author")
	post := env.mkPost(t, uid, "standalone")

	res, err := env.ideaService().CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "private", Content: "mine"})
	require.NoError(t, err)

	_, err = env.communityService().UpdatePost(ctx, uid, post.ID, &dto.UpdatePostDTO{Title: strPtr("renamed")})
	require.NoError(t, err)

	idea, err := env.ideas.GetIdea(ctx, res.Idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", idea.Title)
}
