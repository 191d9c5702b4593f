package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/feed"
	"IdeaVault/internal/service"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// viewerInteractions 只允许作者 7 读取想法 1 的互动
type viewerInteractions struct {
	service.InteractionService
	viewers []uint64
}

func (v *viewerInteractions) visible(viewerID uint64) error {
	v.viewers = append(v.viewers, viewerID)
	if viewerID != 7 {
		return service.ErrIdeaNotFound
	}
	return nil
}

func (v *viewerInteractions) ListComments(_ context.Context, viewerID uint64, _ string, _ uint64, _, _ int) ([]*dto.CommentDTO, error) {
	if err := v.visible(viewerID); err != nil {
		return nil, err
	}
	return []*dto.CommentDTO{{Content: "note to self"}}, nil
}

func (v *viewerInteractions) GetInteractionState(_ context.Context, viewerID uint64, _ string, _ uint64) (*dto.InteractionStateDTO, error) {
	if err := v.visible(viewerID); err != nil {
		return nil, err
	}
	return &dto.InteractionStateDTO{LikesCount: 1}, nil
}

func TestIdeaInteractionReadersUseCaller(t *testing.T) {
	interactions := &viewerInteractions{}
	readers := NewSnapshotReaders(FeedServices{Interaction: interactions})
	ctx := context.Background()
	key := func(table string) feed.Key { return feed.Eq(table, "idea_id", 1) }

	_, err := readers[feed.TableIdeaComments](ctx, 9, key(feed.TableIdeaComments))
	assert.ErrorIs(t, err, service.ErrIdeaNotFound)
	_, err = readers[feed.TableIdeaLikes](ctx, 9, key(feed.TableIdeaLikes))
	assert.ErrorIs(t, err, service.ErrIdeaNotFound)

	comments, err := readers[feed.TableIdeaComments](ctx, 7, key(feed.TableIdeaComments))
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	state, err := readers[feed.TableIdeaLikes](ctx, 7, key(feed.TableIdeaLikes))
	require.NoError(t, err)
	assert.Equal(t, 1, state.(*dto.InteractionStateDTO).LikesCount)

	assert.Equal(t, []uint64{9, 9, 7, 7}, interactions.viewers)
}
