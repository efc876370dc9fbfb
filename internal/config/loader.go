package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Loader handles configuration loading and live reload.
type Loader struct {
	configPath string

	mu sync.Mutex
	v  *viper.Viper
}

// NewLoader creates a config loader. An empty path falls back to
// ~/.saraswati/saraswati.json.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load reads the configuration file, layering SARASWATI_* environment
// variables on top. A missing file yields the defaults.
func (l *Loader) Load() (*Config, error) {
	configPath, err := l.resolvePath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("SARASWATI")
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Secrets come from the environment, never the file.
	if key := os.Getenv("SARASWATI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if pw := os.Getenv("SARASWATI_GRAPH_PASSWORD"); pw != "" {
		cfg.Graph.Password = pw
	}

	if err := l.applyDerivedPaths(cfg); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.v = v
	l.mu.Unlock()

	return cfg, nil
}

// Watch re-reads the config file on change and invokes onChange with the
// fresh configuration. Load must have been called first. Reload failures are
// swallowed; the previous configuration stays in effect.
func (l *Loader) Watch(onChange func(*Config)) error {
	l.mu.Lock()
	v := l.v
	l.mu.Unlock()
	if v == nil {
		return fmt.Errorf("config not loaded")
	}

	v.OnConfigChange(func(fsnotify.Event) {
		cfg := DefaultConfig()
		if err := v.Unmarshal(cfg); err != nil {
			return
		}
		if err := l.applyDerivedPaths(cfg); err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// Save writes the configuration to file. Secrets are not persisted.
func (l *Loader) Save(cfg *Config) error {
	configPath, err := l.resolvePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("server", cfg.Server)
	v.Set("ai", AIConfig{
		Provider:    cfg.AI.Provider,
		Models:      cfg.AI.Models,
		Temperature: cfg.AI.Temperature,
	})
	v.Set("graph", GraphConfig{
		URI:      cfg.Graph.URI,
		User:     cfg.Graph.User,
		Database: cfg.Graph.Database,
	})
	v.Set("store", cfg.Store)
	v.Set("logging", cfg.Logging)
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfig(); err != nil {
		if os.IsNotExist(err) {
			if err := v.SafeWriteConfig(); err != nil {
				return fmt.Errorf("writing config file: %w", err)
			}
			return nil
		}
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// GetConfigPath returns the resolved config file path.
func (l *Loader) GetConfigPath() string {
	path, err := l.resolvePath()
	if err != nil {
		return ""
	}
	return path
}

func (l *Loader) resolvePath() (string, error) {
	if l.configPath != "" {
		return l.configPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".saraswati", "saraswati.json"), nil
}

func (l *Loader) applyDerivedPaths(cfg *Config) error {
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".saraswati")
	}
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "saraswati.log")
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.DataDir, "conversations.db")
	}
	return nil
}

// Load is a convenience wrapper over NewLoader + Load.
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}
