package agent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTurns(n int, assistantLen int) []Turn {
	turns := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			turns = append(turns, Turn{Role: RoleUser, Content: fmt.Sprintf("question %d", i)})
			continue
		}
		turns = append(turns, Turn{Role: RoleAssistant, Content: strings.Repeat("a", assistantLen)})
	}
	return turns
}

func TestWindowHistory(t *testing.T) {
	t.Run("short history passes through untouched", func(t *testing.T) {
		turns := makeTurns(12, 1000)
		got := WindowHistory(turns)
		assert.Equal(t, turns, got)
	})

	t.Run("older assistant turns truncated", func(t *testing.T) {
		turns := makeTurns(16, 1000)
		got := WindowHistory(turns)

		// 4 older + 1 context note + 12 recent.
		require.Len(t, got, 17)
		for i := 0; i < 4; i++ {
			if got[i].Role != RoleAssistant {
				continue
			}
			assert.True(t, strings.HasSuffix(got[i].Content, truncationMarker))
			assert.Len(t, got[i].Content, maxOlderAssistantBytes+len(truncationMarker))
		}
	})

	t.Run("context note sits between older and recent", func(t *testing.T) {
		turns := makeTurns(16, 1000)
		got := WindowHistory(turns)

		note := got[4]
		assert.Equal(t, RoleUser, note.Role)
		assert.Equal(t, contextNote, note.Content)
		assert.Equal(t, turns[4:], got[5:])
	})

	t.Run("no note when nothing was truncated", func(t *testing.T) {
		turns := makeTurns(16, 50)
		got := WindowHistory(turns)

		assert.Len(t, got, 16)
		for _, turn := range got {
			assert.NotEqual(t, contextNote, turn.Content)
		}
	})

	t.Run("older user turns kept intact", func(t *testing.T) {
		turns := makeTurns(16, 1000)
		got := WindowHistory(turns)

		assert.Equal(t, "question 0", got[0].Content)
		assert.Equal(t, "question 2", got[2].Content)
	})

	t.Run("short older assistant turns kept intact", func(t *testing.T) {
		turns := makeTurns(16, 1000)
		turns[1].Content = "brief answer"
		got := WindowHistory(turns)

		assert.Equal(t, "brief answer", got[1].Content)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		turns := makeTurns(16, 1000)
		original := turns[1].Content
		WindowHistory(turns)
		assert.Equal(t, original, turns[1].Content)
	})

	t.Run("empty history", func(t *testing.T) {
		assert.Empty(t, WindowHistory(nil))
	})
}
