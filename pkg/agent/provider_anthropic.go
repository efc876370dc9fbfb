package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicProvider implements Provider for Anthropic Claude.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Generate makes an API call to Anthropic Claude.
func (p *AnthropicProvider) Generate(ctx context.Context, request Request) (*Response, error) {
	messages := []anthropic.MessageParam{}

	for _, turn := range request.Turns {
		switch turn.Role {
		case RoleTool:
			blocks := []anthropic.ContentBlockParamUnion{}
			for _, tr := range turn.ToolResults {
				payload, err := json.Marshal(tr.Payload)
				if err != nil {
					return nil, fmt.Errorf("marshaling tool result: %w", err)
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.CallID, string(payload), false))
			}
			messages = append(messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: blocks,
			})

		case RoleAssistant:
			blocks := []anthropic.ContentBlockParamUnion{}
			if turn.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Content))
			}
			for _, tc := range turn.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, tc.Args, tc.Name))
			}
			messages = append(messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})

		default:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(turn.Content),
			))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(request.Model),
		Messages:  messages,
		MaxTokens: anthropicMaxTokens,
	}
	if request.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: request.SystemPrompt}}
	}
	if request.Temperature > 0 {
		params.Temperature = anthropic.Float(request.Temperature)
	}
	if len(request.Tools) > 0 {
		tools := []anthropic.ToolUnionParam{}
		for _, spec := range request.Tools {
			properties := map[string]any{}
			required := []string{}
			for _, param := range spec.Parameters {
				properties[param.Name] = map[string]any{
					"type":        param.Type,
					"description": param.Description,
				}
				if param.Required {
					required = append(required, param.Name)
				}
			}
			tools = append(tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			}})
		}
		params.Tools = tools
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	out := &Response{}
	for _, block := range response.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Text += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal([]byte(b.JSON.Input.Raw()), &args); err != nil {
				return nil, fmt.Errorf("parsing tool input: %w", err)
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{ID: b.ID, Name: b.Name, Args: args})
		}
	}
	return out, nil
}
