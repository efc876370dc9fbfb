package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini. This is the primary
// provider; the fallback model list defaults to Gemini flash variants.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Generate makes an API call to Gemini.
func (p *GeminiProvider) Generate(ctx context.Context, request Request) (*Response, error) {
	contents := make([]*genai.Content, 0, len(request.Turns))
	for _, turn := range request.Turns {
		contents = append(contents, geminiContent(turn))
	}

	config := &genai.GenerateContentConfig{}
	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}
	if request.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(request.Temperature))
	}
	if len(request.Tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: geminiDeclarations(request.Tools)}}
	}

	resp, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return &Response{}, nil
	}

	out := &Response{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:   fmt.Sprintf("call_%d", len(out.ToolCalls)),
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return out, nil
}

// geminiContent converts a neutral turn into Gemini content. Assistant maps
// to the "model" role; tool-result turns become user content carrying
// function responses.
func geminiContent(turn Turn) *genai.Content {
	switch turn.Role {
	case RoleAssistant:
		parts := []*genai.Part{}
		if turn.Content != "" {
			parts = append(parts, genai.NewPartFromText(turn.Content))
		}
		for _, tc := range turn.ToolCalls {
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{Name: tc.Name, Args: tc.Args},
			})
		}
		return &genai.Content{Role: genai.RoleModel, Parts: parts}

	case RoleTool:
		parts := make([]*genai.Part, 0, len(turn.ToolResults))
		for _, tr := range turn.ToolResults {
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{Name: tr.Name, Response: tr.Payload},
			})
		}
		return &genai.Content{Role: genai.RoleUser, Parts: parts}

	default:
		return genai.NewContentFromText(turn.Content, genai.RoleUser)
	}
}

func geminiDeclarations(specs []ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: map[string]*genai.Schema{},
		}
		for _, param := range spec.Parameters {
			schema.Properties[param.Name] = &genai.Schema{
				Type:        geminiType(param.Type),
				Description: param.Description,
			}
			if param.Required {
				schema.Required = append(schema.Required, param.Name)
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  schema,
		})
	}
	return decls
}

func geminiType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
