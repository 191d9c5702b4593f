package service

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/feed"
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, env *testEnv, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(m).Count(&n).Error)
	return n
}

func TestCreateIdeaShareValidatesChannelFirst(t *testing.T) {
	env := newTestEnv(t)
	uid := env.mkUser(t, "author")
	svc := env.ideaService()

	_, err := svc.CreateIdea(context.Background(), uid, &dto.CreateIdeaDTO{Title: "t", ShareToCommunity: true})
	assert.ErrorIs(t, err, ErrChannelRequired)

	_, err = svc.CreateIdea(context.Background(), uid, &dto.CreateIdeaDTO{Title: "t", ShareToCommunity: true, Channel: "nowhere"})
	assert.ErrorIs(t, err, ErrChannelInvalid)

	assert.Zero(t, countRows(t, env, &model.Idea{}))
	assert.Zero(t, countRows(t, env, &model.CommunityPost{}))
}

func TestCreateIdeaSharedCreatesLinkedPost(t *testing.T) {
	env := newTestEnv(t)
	uid := env.mkUser(t, "author")

	res, err := env.ideaService().CreateIdea(context.Background(), uid, &dto.CreateIdeaDTO{
		Title:            "Solar kiosk",
		Content:          "cheap charging #energy",
		ShareToCommunity: true,
		Channel:          "technology",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Post)
	assert.True(t, res.Idea.SharedToCommunity)
	assert.Contains(t, res.Idea.Tags, "energy")
	require.NotNil(t, res.Post.SourceIdeaID)
	assert.Equal(t, res.Idea.ID, *res.Post.SourceIdeaID)
	assert.Equal(t, "technology", res.Post.Channel)
}

func TestShareIdeaPublishesPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "author")
	svc := env.ideaService()

	created, err := svc.CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "Draft thought"})
	require.NoError(t, err)
	assert.Nil(t, created.Post)

	sub, err := env.bus.Subscribe(ctx, feed.Key{Table: feed.TableCommunityPosts}.Channel())
	require.NoError(t, err)
	defer sub.Close()

	post, err := svc.ShareIdea(ctx, uid, created.Idea.ID, "design")
	require.NoError(t, err)
	require.NotNil(t, post.SourceIdeaID)
	assert.Equal(t, created.Idea.ID, *post.SourceIdeaID)

	select {
	case raw := <-sub.Messages():
		var ev feed.Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, feed.Insert, ev.Type)
		assert.Equal(t, feed.TableCommunityPosts, ev.Table)
	case <-time.After(time.Second):
		t.Fatal("no community post event")
	}

	idea, err := env.ideas.GetIdea(ctx, created.Idea.ID)
	require.NoError(t, err)
	assert.True(t, idea.SharedToCommunity)

	_, err = svc.ShareIdea(ctx, uid, created.Idea.ID, "design")
	assert.ErrorIs(t, err, ErrIdeaAlreadyShared)

	_, err = svc.ShareIdea(ctx, uid, created.Idea.ID, "")
	assert.ErrorIs(t, err, ErrChannelRequired)
}

func TestIdeaTrashLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "author")
	svc := env.ideaService()

	keep, err := svc.CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "keep"})
	require.NoError(t, err)
	trash, err := svc.CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "trash"})
	require.NoError(t, err)

	// 未进回收站不能彻底删除
	assert.ErrorIs(t, svc.PurgeIdea(ctx, uid, trash.Idea.ID), ErrIdeaNotInTrash)

	require.NoError(t, svc.DeleteIdea(ctx, uid, trash.Idea.ID))

	page, err := svc.ListIdeas(ctx, uid, nil, nil, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, keep.Idea.ID, page.Items[0].ID)

	got, err := svc.GetIdea(ctx, uid, trash.Idea.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.NotNil(t, got.DeletedAt)

	inTrash, err := svc.ListTrash(ctx, uid, 1, 20)
	require.NoError(t, err)
	require.Len(t, inTrash, 1)
	assert.Equal(t, trash.Idea.ID, inTrash[0].ID)

	restored, err := svc.RestoreIdea(ctx, uid, trash.Idea.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	_, err = svc.RestoreIdea(ctx, uid, trash.Idea.ID)
	assert.ErrorIs(t, err, ErrIdeaNotInTrash)

	require.NoError(t, svc.DeleteIdea(ctx, uid, trash.Idea.ID))
	require.NoError(t, svc.PurgeIdea(ctx, uid, trash.Idea.ID))
	_, err = svc.GetIdea(ctx, uid, trash.Idea.ID)
	assert.ErrorIs(t, err, ErrIdeaNotFound)
}

func TestGetIdeaVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, other := env.mkUser(t, "owner"), env.mkUser(t, "other")
	svc := env.ideaService()

	private, err := svc.CreateIdea(ctx, owner, &dto.CreateIdeaDTO{Title: "private"})
	require.NoError(t, err)
	shared, err := svc.CreateIdea(ctx, owner, &dto.CreateIdeaDTO{Title: "shared", ShareToCommunity: true, Channel: "general"})
	require.NoError(t, err)

	_, err = svc.GetIdea(ctx, other, private.Idea.ID)
	assert.ErrorIs(t, err, ErrIdeaNotFound)
	_, err = svc.GetIdea(ctx, 0, private.Idea.ID)
	assert.ErrorIs(t, err, ErrIdeaNotFound)

	got, err := svc.GetIdea(ctx, other, shared.Idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "shared", got.Title)

	// 非作者不能修改
	title := "hijack"
	_, err = svc.UpdateIdea(ctx, other, shared.Idea.ID, &dto.UpdateIdeaDTO{Title: &title})
	assert.ErrorIs(t, err, UnauthorizedError)
	assert.ErrorIs(t, svc.DeleteIdea(ctx, other, shared.Idea.ID), UnauthorizedError)
}

func TestIdeaFolders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid, other := env.mkUser(t, "author"), env.mkUser(t, "other")
	svc := env.ideaService()

	folder, err := svc.CreateFolder(ctx, uid, "Inbox")
	require.NoError(t, err)

	_, err = svc.CreateIdea(ctx, other, &dto.CreateIdeaDTO{Title: "x", FolderID: &folder.ID})
	assert.ErrorIs(t, err, ErrFolderNotFound)

	_, err = svc.CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "filed", FolderID: &folder.ID})
	require.NoError(t, err)
	_, err = svc.CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "loose"})
	require.NoError(t, err)

	page, err := svc.ListIdeas(ctx, uid, &folder.ID, nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "filed", page.Items[0].Title)

	require.NoError(t, svc.RenameFolder(ctx, uid, folder.ID, "Later"))
	folders, err := svc.ListFolders(ctx, uid)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Later", folders[0].Name)

	assert.ErrorIs(t, svc.DeleteFolder(ctx, other, folder.ID), ErrFolderNotFound)
	require.NoError(t, svc.DeleteFolder(ctx, uid, folder.ID))
}

func TestUpdateIdeaMirrorsSharedPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid, other := env.mkUser(t, "author"), env.mkUser(t, "other")

	res, err := env.ideaService().CreateIdea(ctx, uid, &dto.CreateIdeaDTO{
		Title: "Draft", Content: "old body", ShareToCommunity: true, Channel: "technology",
	})
	require.NoError(t, err)

	svc := env.ideaService()
	_, err = svc.UpdateIdea(ctx, other, res.Idea.ID, &dto.UpdateIdeaDTO{Title: strPtr("hijack")})
	assert.ErrorIs(t, err, UnauthorizedError)

	updated, err := svc.UpdateIdea(ctx, uid, res.Idea.ID, &dto.UpdateIdeaDTO{
		Title: strPtr("Final"), Content: strPtr("new body"), Tags: []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)

	post, err := env.posts.GetPost(ctx, res.Post.ID)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "Final", post.Title)
	assert.Equal(t, "new body", post.Content)
	assert.Equal(t, model.Tags{"go"}, post.Tags)
	assert.Equal(t, "technology", post.Channel)
}

func TestUpdateUnsharedIdeaLeavesPostsAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.mkUser(t, "author")
	post := env.mkPost(t, uid, "standalone")

	res, err := env.ideaService().CreateIdea(ctx, uid, &dto.CreateIdeaDTO{Title: "private", Content: "mine"})
	require.NoError(t, err)

	_, err = env.ideaService().UpdateIdea(ctx, uid, res.Idea.ID, &dto.UpdateIdeaDTO{Title: strPtr("renamed")})
	require.NoError(t, err)

	got, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "standalone", got.Title)
}
