package service

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/consts"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulateChannelsIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSeedService(env.users, env.posts, env.interactions, config.SeedConfig{BotCount: 3, PostsPerChannel: 2})

	first, err := svc.PopulateChannels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Bots)
	assert.Equal(t, 2*len(consts.Channels), first.Posts)
	assert.Positive(t, first.Likes)
	assert.NotEmpty(t, first.Message)

	bots, err := env.users.ListBots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 3)
	for _, b := range bots {
		assert.True(t, b.Profile.IsBot)
		assert.Equal(t, model.Roles{consts.RoleBot}, b.Roles)
	}

	second, err := svc.PopulateChannels(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Bots)
	assert.Zero(t, second.Posts)
	assert.Equal(t, int64(2*len(consts.Channels)), countRows(t, env, &model.CommunityPost{}))
}

func TestPopulateChannelsLocked(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.mr.Set(consts.SeedLock, "someone-else"))
	env.mr.SetTTL(consts.SeedLock, time.Minute)

	svc := NewSeedService(env.users, env.posts, env.interactions, config.SeedConfig{})
	_, err := svc.PopulateChannels(context.Background())
	assert.ErrorIs(t, err, ErrSeedRunning)
}
