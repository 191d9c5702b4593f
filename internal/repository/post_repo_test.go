package repository

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "50!%", escapeLike("50%"))
	assert.Equal(t, "snake!_case", escapeLike("snake_case"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestSearchPostsTreatsWildcardsLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepo(db)
	ctx := context.Background()

	for _, title := range []string{"50% off", "500 ideas", "snake_case", "snakeXcase", "wow!"} {
		require.NoError(t, repo.CreatePost(ctx, &model.CommunityPost{
			UserID: 1, Title: title, Content: "body", Channel: "general",
		}))
	}

	titles := func(keyword string) []string {
		posts, err := repo.SearchPosts(ctx, keyword, "", 10, 0)
		require.NoError(t, err)
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.Title)
		}
		return out
	}

	assert.Equal(t, []string{"50% off"}, titles("50%"))
	assert.Equal(t, []string{"snake_case"}, titles("snake_"))
	assert.Equal(t, []string{"wow!"}, titles("wow!"))
	assert.Len(t, titles("%"), 1)
	assert.Len(t, titles("snake"), 2)
}
