package agent

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Recognized tool names.
const (
	toolFetchPapers = "fetch_papers"
	toolSearchWeb   = "search_web"
)

// toolSpecs declares the tools offered to the model during tool-calling
// rounds. The final synthesis call offers none.
func toolSpecs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        toolFetchPapers,
			Description: "Search ArXiv for academic papers matching a research query.",
			Parameters: []ToolParam{
				{Name: "query", Type: "string", Description: "ArXiv search query", Required: true},
				{Name: "max_results", Type: "integer", Description: "Number of papers (default 4)"},
			},
		},
		{
			Name:        toolSearchWeb,
			Description: "Search the web to verify information or get additional context about a topic.",
			Parameters: []ToolParam{
				{Name: "query", Type: "string", Description: "Web search query", Required: true},
			},
		},
	}
}

// compileToolSchemas builds a JSON schema validator per tool so model-sent
// arguments are checked before dispatch.
func compileToolSchemas(specs []ToolSpec) (map[string]*gojsonschema.Schema, error) {
	schemas := make(map[string]*gojsonschema.Schema, len(specs))
	for _, spec := range specs {
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
		schemaMap := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			schemaMap["required"] = required
		}

		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
		if err != nil {
			return nil, fmt.Errorf("compiling schema for %s: %w", spec.Name, err)
		}
		schemas[spec.Name] = schema
	}
	return schemas, nil
}

// validateToolArgs checks model-provided arguments against the tool's
// schema.
func validateToolArgs(schema *gojsonschema.Schema, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validating arguments: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("invalid arguments: %v", result.Errors())
	}
	return nil
}

// stringArg extracts a string argument, falling back when absent or of the
// wrong type.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
