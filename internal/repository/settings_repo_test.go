package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSettingsWritesFalseToggles(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSettingsRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSettings(ctx, model.DefaultSettings(9)))

	off := model.DefaultSettings(9)
	off.Theme = "dark"
	off.NotifyOnLike = false
	off.EmailNotifications = false
	require.NoError(t, repo.UpsertSettings(ctx, off))

	got, err := repo.GetSettings(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dark", got.Theme)
	assert.False(t, got.NotifyOnLike)
	assert.False(t, got.EmailNotifications)
	assert.True(t, got.NotifyOnComment)

	// 首次写入就是 false 也不能被列默认值覆盖
	fresh := model.DefaultSettings(10)
	fresh.PushNotifications = false
	require.NoError(t, repo.UpsertSettings(ctx, fresh))
	got, err = repo.GetSettings(ctx, 10)
	require.NoError(t, err)
	assert.False(t, got.PushNotifications)

	missing, err := repo.GetSettings(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
