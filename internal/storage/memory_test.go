package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryonstudio/internal/moodboard"
)

func sampleRun(id string) Run {
	return Run{
		ID:              id,
		BackgroundStyle: "studio",
		ModelIdentity:   "female model",
		Views: moodboard.Moodboard{
			{Label: "Front", URL: "https://cdn.example.com/front.jpg"},
			{Label: "Close-up", URL: "https://cdn.example.com/closeup.jpg"},
			{Label: "Back", URL: "https://cdn.example.com/back.jpg"},
			{Label: "Side", URL: "https://cdn.example.com/side.jpg"},
		},
		Status: "completed",
	}
}

func TestInMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	created, err := store.CreateRun(ctx, sampleRun("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("get", func(t *testing.T) {
		got, err := store.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, "studio", got.BackgroundStyle)
		assert.Len(t, got.Views, 4)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := store.GetRun(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		_, err := store.CreateRun(ctx, sampleRun("run-2"))
		require.NoError(t, err)

		runs, err := store.ListRuns(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "run-2", runs[0].ID)
		assert.Equal(t, "run-1", runs[1].ID)
	})

	t.Run("generated id when missing", func(t *testing.T) {
		created, err := store.CreateRun(ctx, Run{Status: "completed"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteRun(ctx, "run-2"))
		_, err := store.GetRun(ctx, "run-2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteRun(ctx, "run-2"), ErrNotFound)
	})
}

func TestInMemoryStoreReplaceView(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	_, err := store.CreateRun(ctx, sampleRun("run-1"))
	require.NoError(t, err)

	t.Run("replaces only the labeled entry", func(t *testing.T) {
		updated, err := store.ReplaceView(ctx, "run-1", "Back", "https://cdn.example.com/back-v2.jpg")
		require.NoError(t, err)

		for _, v := range updated.Views {
			if v.Label == "Back" {
				assert.Equal(t, "https://cdn.example.com/back-v2.jpg", v.URL)
			} else {
				assert.Contains(t, v.URL, "cdn.example.com")
				assert.NotContains(t, v.URL, "v2")
			}
		}
	})

	t.Run("last writer wins", func(t *testing.T) {
		_, err := store.ReplaceView(ctx, "run-1", "Front", "https://cdn.example.com/front-a.jpg")
		require.NoError(t, err)
		updated, err := store.ReplaceView(ctx, "run-1", "Front", "https://cdn.example.com/front-b.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/front-b.jpg", updated.Views[0].URL)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := store.ReplaceView(ctx, "ghost", "Front", "https://x.example/y.jpg")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInMemoryStoreRetention(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for i := 0; i < maxRetainedRuns+10; i++ {
		_, err := store.CreateRun(ctx, sampleRun(fmt.Sprintf("run-%d", i)))
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, maxRetainedRuns)
	assert.Equal(t, fmt.Sprintf("run-%d", maxRetainedRuns+9), runs[0].ID)
}
