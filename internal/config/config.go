package config

// Config is the full service configuration.
type Config struct {
	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Model provider
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Knowledge graph (optional)
	Graph GraphConfig `json:"graph" mapstructure:"graph"`

	// Conversation store
	Store StoreConfig `json:"store" mapstructure:"store"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string   `json:"host" mapstructure:"host"`
	Port         int      `json:"port" mapstructure:"port"`
	CORSOrigins  []string `json:"cors_origins" mapstructure:"cors_origins"`
	ReadTimeout  int      `json:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int      `json:"write_timeout" mapstructure:"write_timeout"` // seconds; streams need a generous value
}

// AIConfig holds model provider configuration. Models is the fallback chain
// in priority order.
type AIConfig struct {
	Provider    string   `json:"provider" mapstructure:"provider"` // gemini, anthropic, openai
	APIKey      string   `json:"api_key" mapstructure:"api_key"`
	Models      []string `json:"models" mapstructure:"models"`
	Temperature float64  `json:"temperature" mapstructure:"temperature"`
}

// GraphConfig holds Neo4j connection settings. An empty URI disables graph
// persistence entirely.
type GraphConfig struct {
	URI      string `json:"uri" mapstructure:"uri"`
	User     string `json:"user" mapstructure:"user"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StoreConfig holds the conversation store settings.
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"` // sqlite file, defaults under DataDir
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			CORSOrigins:  []string{"http://localhost:3000"},
			ReadTimeout:  30,
			WriteTimeout: 300,
		},
		AI: AIConfig{
			Provider: "gemini",
			Models: []string{
				"gemini-flash-latest",
				"gemini-flash-lite-latest",
				"gemini-2.0-flash-lite",
			},
			Temperature: 0.7,
		},
		Graph: GraphConfig{
			User:     "neo4j",
			Database: "neo4j",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
	}
}

// GraphEnabled reports whether graph persistence is configured.
func (c *Config) GraphEnabled() bool {
	return c.Graph.URI != ""
}
