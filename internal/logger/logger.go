package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog with file output, rotation and credential redaction.
type Logger struct {
	logger   zerolog.Logger
	rotator  *RotatingWriter
	redactor *Redactor
}

// Config holds logger configuration.
type Config struct {
	Level     string `json:"level" mapstructure:"level"`           // debug, info, warn, error
	File      string `json:"file" mapstructure:"file"`             // log file path, empty disables file output
	Console   bool   `json:"console" mapstructure:"console"`       // enable console output
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`         // human-readable console format
	Redaction bool   `json:"redaction" mapstructure:"redaction"`   // mask credentials in output
	MaxSizeMB int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`       // days rotated files are kept
	Compress  bool   `json:"compress" mapstructure:"compress"`
}

// DefaultConfig returns the logger defaults.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Console:   true,
		Pretty:    true,
		Redaction: true,
		MaxSizeMB: 100,
		MaxAge:    7,
		Compress:  true,
	}
}

// New creates a logger. The returned logger is also installed as the zerolog
// global so package-level logging shares the same sinks.
func New(cfg Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer

	if cfg.Console {
		var console io.Writer = os.Stdout
		if cfg.Pretty {
			console = zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			}
		}
		writers = append(writers, console)
	}

	var rotator *RotatingWriter
	if cfg.File != "" {
		rotator, err = NewRotatingWriter(cfg.File, cfg.MaxSizeMB, cfg.MaxAge, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		writers = append(writers, rotator)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	var redactor *Redactor
	if cfg.Redaction {
		redactor = NewRedactor()
		writer = redactor.Wrap(writer)
	}

	zl := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = zl

	return &Logger{
		logger:   zl,
		rotator:  rotator,
		redactor: redactor,
	}, nil
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// Zerolog returns the underlying zerolog.Logger for injection into
// components.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
}

// With creates a child logger context.
func (l *Logger) With() zerolog.Context {
	return l.logger.With()
}

func (l *Logger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.logger.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.logger.Fatal() }
