package cli

import (
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "saraswati",
	Short: "Saraswati - AI research agent service",
	Long: `Saraswati is a streaming research agent service. It orchestrates an
LLM over ArXiv and web search, ranks papers by relevance and credibility,
and streams results to research canvases over server-sent events.`,
	Version: version,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.saraswati/saraswati.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
