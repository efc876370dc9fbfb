package agent

const (
	// maxFullTurns is how many recent turns are kept at full fidelity.
	maxFullTurns = 12

	// maxOlderAssistantBytes caps assistant content in older turns.
	// Measured in bytes; conversation content is markdown text.
	maxOlderAssistantBytes = 400

	truncationMarker = "… [truncated for context efficiency]"

	contextNote = "[CONTEXT NOTE: Earlier assistant messages were summarised to save tokens. " +
		"The conversation topic and user preferences are preserved above.]"
)

// WindowHistory bounds conversation context for the model. The most recent
// maxFullTurns turns pass through untouched; older assistant turns are
// truncated to maxOlderAssistantBytes plus a marker. When any truncation
// happened, one synthetic user note is inserted between the older block and
// the recent window so the model knows context was compressed.
func WindowHistory(turns []Turn) []Turn {
	if len(turns) <= maxFullTurns {
		return turns
	}

	older := turns[:len(turns)-maxFullTurns]
	recent := turns[len(turns)-maxFullTurns:]

	out := make([]Turn, 0, len(turns)+1)
	truncated := false
	for _, turn := range older {
		if turn.Role == RoleAssistant && len(turn.Content) > maxOlderAssistantBytes {
			turn.Content = turn.Content[:maxOlderAssistantBytes] + truncationMarker
			truncated = true
		}
		out = append(out, turn)
	}

	if truncated {
		out = append(out, Turn{Role: RoleUser, Content: contextNote})
	}

	return append(out, recent...)
}
