package agent

import (
	"context"

	"github.com/saraswati/saraswati/pkg/paperrank"
	"github.com/saraswati/saraswati/pkg/search"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Turn is one entry of the conversation. User and assistant turns carry
// text; an assistant turn that requested tools carries ToolCalls, and the
// combined round of results comes back as a single RoleTool turn.
type Turn struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall is a structured request from the model to invoke a tool.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult carries one tool's output back to the model.
type ToolResult struct {
	CallID  string         `json:"call_id"`
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload"`
}

// Outbound event types.
const (
	EventText            = "text"
	EventPaperArtifact   = "paper_artifact"
	EventSuggestionChips = "suggestion_chips"
	EventStatus          = "status"
	EventError           = "error"
	EventDone            = "done"
)

// Event is one outbound stream event. Type selects which payload fields are
// set; the zero fields are omitted on the wire.
type Event struct {
	Type    string           `json:"type"`
	Content string           `json:"content,omitempty"`
	Paper   *paperrank.Paper `json:"paper,omitempty"`
	Chips   []string         `json:"chips,omitempty"`
}

// RunParams is the input for one research stream.
type RunParams struct {
	ProjectID   string
	Message     string
	History     []Turn
	ActivePaper *paperrank.Paper
}

// PaperSearcher is the paper-search provider contract. Best-effort: an empty
// result set on failure, never an error.
type PaperSearcher interface {
	SearchPapers(ctx context.Context, query string, maxResults int) []paperrank.Paper
}

// WebSearcher is the web-search provider contract. Best-effort like
// PaperSearcher.
type WebSearcher interface {
	SearchWeb(ctx context.Context, query string, maxResults int) []search.WebResult
}

// GraphPersister receives the full fetched pool of one fetch_papers call for
// background persistence. Implementations must never block the caller.
type GraphPersister interface {
	Enqueue(papers []paperrank.Paper, query, projectID string) bool
}
