package config

import "fmt"

var supportedProviders = map[string]bool{
	"gemini":    true,
	"anthropic": true,
	"openai":    true,
}

// Validate checks the configuration for values the service cannot start
// with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if !supportedProviders[c.AI.Provider] {
		return fmt.Errorf("ai.provider must be one of gemini, anthropic, openai; got %q", c.AI.Provider)
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required (set SARASWATI_API_KEY)")
	}
	if len(c.AI.Models) == 0 {
		return fmt.Errorf("ai.models must list at least one model")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", c.AI.Temperature)
	}

	if c.GraphEnabled() {
		if c.Graph.User == "" {
			return fmt.Errorf("graph.user is required when graph.uri is set")
		}
		if c.Graph.Password == "" {
			return fmt.Errorf("graph password is required when graph.uri is set (set SARASWATI_GRAPH_PASSWORD)")
		}
	}

	return nil
}
