package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *MessageStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "conversations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "proj-1", "user", "what are transformers?"))
	require.NoError(t, s.Append(ctx, "proj-1", "assistant", "Sequence models built on attention."))
	require.NoError(t, s.Append(ctx, "proj-2", "user", "unrelated project"))

	history, err := s.History(ctx, "proj-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "what are transformers?", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.NotEmpty(t, history[0].ID)
	assert.False(t, history[0].CreatedAt.IsZero())
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Append(ctx, "proj-1", "user", fmt.Sprintf("message %d", i)))
	}

	history, err := s.History(ctx, "proj-1", 4)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "message 6", history[0].Content)
	assert.Equal(t, "message 9", history[3].Content)
}

func TestHistoryEmptyProject(t *testing.T) {
	s := openTestStore(t)

	history, err := s.History(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "conversations.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}
