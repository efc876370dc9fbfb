package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saraswati/saraswati/internal/api"
	"github.com/saraswati/saraswati/internal/config"
	"github.com/saraswati/saraswati/internal/logger"
	"github.com/saraswati/saraswati/internal/store"
	"github.com/saraswati/saraswati/pkg/agent"
	"github.com/saraswati/saraswati/pkg/graph"
	"github.com/saraswati/saraswati/pkg/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the research agent HTTP service",
	Long: `Start the HTTP service. Streams research conversations over SSE on
/api/v1/chat/research and persists discovered papers to the knowledge graph
when one is configured.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   true,
		Pretty:    true,
		Redaction: cfg.Logging.Redaction,
		MaxSizeMB: cfg.Logging.MaxSize,
		MaxAge:    cfg.Logging.MaxAge,
		Compress:  cfg.Logging.Compress,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Close()

	zl := log.Zerolog()
	zl.Info().Str("version", version).Str("provider", cfg.AI.Provider).Msg("starting saraswati")

	// Live log-level adjustment on config file edits.
	if err := loader.Watch(func(fresh *config.Config) {
		if level, err := zerolog.ParseLevel(fresh.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
			zl.Info().Str("level", level.String()).Msg("log level updated from config")
		}
	}); err != nil {
		zl.Warn().Err(err).Msg("config watch unavailable")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := agent.NewProvider(cfg.AI.Provider, cfg.AI.APIKey)
	if err != nil {
		return fmt.Errorf("initializing provider: %w", err)
	}
	fallback, err := agent.NewFallback(provider, cfg.AI.Models, zl)
	if err != nil {
		return fmt.Errorf("initializing fallback chain: %w", err)
	}

	loopCfg := agent.LoopConfig{
		Generator: fallback,
		Papers:    search.NewArxivClient(zl),
		Web:       search.NewWebClient(zl),
		Logger:    zl,
	}

	if cfg.GraphEnabled() {
		graphStore, err := graph.NewNeo4jStore(graph.Neo4jConfig{
			URI:      cfg.Graph.URI,
			User:     cfg.Graph.User,
			Password: cfg.Graph.Password,
			Database: cfg.Graph.Database,
		})
		if err != nil {
			return fmt.Errorf("connecting to graph: %w", err)
		}
		defer graphStore.Close(context.Background())

		if err := graphStore.SetupConstraints(ctx); err != nil {
			zl.Warn().Err(err).Msg("graph constraint setup failed, continuing")
		}

		persister := graph.NewPersister(graphStore, zl)
		defer persister.Close()
		loopCfg.Graph = persister
		zl.Info().Str("uri", cfg.Graph.URI).Msg("graph persistence enabled")
	} else {
		zl.Info().Msg("graph persistence disabled, no uri configured")
	}

	messages, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening message store: %w", err)
	}
	defer messages.Close()

	loop, err := agent.NewLoop(loopCfg)
	if err != nil {
		return fmt.Errorf("initializing agent loop: %w", err)
	}

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		CORSOrigins:  cfg.Server.CORSOrigins,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		Runner:       loop,
		Messages:     messages,
		Logger:       zl,
	})
	if err != nil {
		return fmt.Errorf("initializing api server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
