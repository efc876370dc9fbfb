package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider for OpenAI chat completions.
type OpenAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Generate makes an API call to OpenAI.
func (p *OpenAIProvider) Generate(ctx context.Context, request Request) (*Response, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}

	for _, turn := range request.Turns {
		switch turn.Role {
		case RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))

		case RoleAssistant:
			if len(turn.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(turn.Content))
				continue
			}
			toolCalls := []openai.ChatCompletionMessageToolCall{}
			for _, tc := range turn.ToolCalls {
				args, err := json.Marshal(tc.Args)
				if err != nil {
					return nil, fmt.Errorf("marshaling tool args: %w", err)
				}
				toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunction{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			assistantMsg := openai.ChatCompletionMessage{
				Role:      "assistant",
				Content:   turn.Content,
				ToolCalls: toolCalls,
			}
			messages = append(messages, assistantMsg.ToParam())

		case RoleTool:
			for _, tr := range turn.ToolResults {
				payload, err := json.Marshal(tr.Payload)
				if err != nil {
					return nil, fmt.Errorf("marshaling tool result: %w", err)
				}
				messages = append(messages, openai.ToolMessage(tr.CallID, string(payload)))
			}
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(request.Model),
		Messages: messages,
	}
	if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}
	if len(request.Tools) > 0 {
		tools := []openai.ChatCompletionToolParam{}
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
			schema := map[string]any{
				"type":       "object",
				"properties": properties,
			}
			if len(required) > 0 {
				schema["required"] = required
			}
			tools = append(tools, openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        spec.Name,
					Description: openai.String(spec.Description),
					Parameters:  openai.FunctionParameters(schema),
				},
			})
		}
		params.Tools = tools
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	choice := response.Choices[0]
	out := &Response{Text: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("parsing tool arguments: %w", err)
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out, nil
}
