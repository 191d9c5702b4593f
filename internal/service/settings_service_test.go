package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestSettingsDefaultsAndCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSettingsService(repository.NewSettingsRepo(env.db), env.publisher)

	// 没有任何记录的用户也能拿到默认值
	got, err := svc.GetSettings(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "system", got.Theme)
	assert.Equal(t, "en", got.Language)
	assert.True(t, got.NotifyOnLike)
	assert.True(t, env.mr.Exists(settingsKey(77)))

	out, err := svc.UpdateSettings(ctx, 77, &dto.UpdateSettingsDTO{
		Theme:        strPtr("dark"),
		NotifyOnLike: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", out.Theme)
	assert.False(t, out.NotifyOnLike)
	assert.False(t, env.mr.Exists(settingsKey(77)))

	got, err = svc.GetSettings(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.False(t, got.NotifyOnLike)
	assert.True(t, got.NotifyOnComment)
}

func TestUpdateSettingsRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSettingsService(repository.NewSettingsRepo(env.db), env.publisher)

	_, err := svc.UpdateSettings(ctx, 5, &dto.UpdateSettingsDTO{Theme: strPtr("neon")})
	assert.ErrorIs(t, err, ErrThemeInvalid)
	_, err = svc.UpdateSettings(ctx, 5, &dto.UpdateSettingsDTO{Language: strPtr("x")})
	assert.ErrorIs(t, err, ErrParamInvalid)
}
