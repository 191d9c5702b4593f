package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, keys ...string) error {
	r.keys = append(r.keys, keys...)
	return nil
}

func TestRun_CommitSuccess(t *testing.T) {
	inv := &recordingInvalidator{}
	runner := NewRunner(inv)
	counter := 0
	var published string

	out, err := Run(context.Background(), runner, Mutation[string]{
		Name:       "like",
		Optimistic: func(ctx context.Context) error { counter++; return nil },
		Commit:     func(ctx context.Context) (string, error) { return "liked", nil },
		Rollback:   func(ctx context.Context) { counter-- },
		Invalidate: []string{"post:like:1"},
		OnSuccess:  func(ctx context.Context, r string) { published = r },
	})

	require.NoError(t, err)
	assert.Equal(t, "liked", out)
	assert.Equal(t, 1, counter)
	assert.Equal(t, "liked", published)
	assert.Equal(t, []string{"post:like:1"}, inv.keys)
}

func TestRun_CommitFailureRollsBack(t *testing.T) {
	inv := &recordingInvalidator{}
	runner := NewRunner(inv)
	counter := 0
	commits := 0
	successCalled := false
	boom := errors.New("boom")

	_, err := Run(context.Background(), runner, Mutation[int]{
		Optimistic: func(ctx context.Context) error { counter++; return nil },
		Commit: func(ctx context.Context) (int, error) {
			commits++
			return 0, boom
		},
		Rollback:   func(ctx context.Context) { counter-- },
		Invalidate: []string{"k"},
		OnSuccess:  func(ctx context.Context, _ int) { successCalled = true },
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, counter)
	assert.Equal(t, 1, commits)
	assert.False(t, successCalled)
	assert.Equal(t, []string{"k"}, inv.keys)
}

func TestRun_OptimisticFailureSkipsRollback(t *testing.T) {
	rolledBack := false

	_, err := Run(context.Background(), NewRunner(nil), Mutation[int]{
		Optimistic: func(ctx context.Context) error { return errors.New("cache down") },
		Commit:     func(ctx context.Context) (int, error) { return 0, errors.New("db down") },
		Rollback:   func(ctx context.Context) { rolledBack = true },
	})

	assert.Error(t, err)
	assert.False(t, rolledBack)
}
