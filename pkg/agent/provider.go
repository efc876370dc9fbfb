package agent

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the completion API behind the agent. Implementations translate
// the neutral request into their SDK's wire format.
type Provider interface {
	// Generate makes one completion call.
	Generate(ctx context.Context, request Request) (*Response, error)

	// Name returns the provider name.
	Name() string
}

// Request contains the parameters for one completion call.
type Request struct {
	Model        string
	Turns        []Turn
	SystemPrompt string
	Tools        []ToolSpec
	Temperature  float64
}

// Response is the discriminated result of a completion call: either final
// text, or a list of requested tool calls (possibly alongside partial text).
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model requested tools instead of
// finishing with text.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// ToolSpec declares a tool the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  []ToolParam
}

// ToolParam describes one tool argument.
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// NewProvider creates a provider by name.
func NewProvider(name, apiKey string) (Provider, error) {
	switch name {
	case "gemini":
		return NewGeminiProvider(apiKey)
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// IsTransientError reports whether an error came from provider-side
// throttling or a temporary outage and is worth retrying. Anything else
// (malformed payload, auth failure) propagates immediately.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"429", "503", "RESOURCE_EXHAUSTED", "UNAVAILABLE", "rate limit", "overloaded"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
