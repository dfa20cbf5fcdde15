// Package main provides the sarkari-search CLI: scraping, processing,
// indexing, searching and evaluation from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarkarisearch/sarkari-search/internal/config"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sarkari-search",
		Short: "Sarkari Search - semantic search over Indian government documents",
		Long: `Sarkari Search scrapes public documents from government agencies
(RBI, Income Tax Department, CAQM), extracts and chunks their text, indexes
embeddings into Qdrant, and serves semantic and keyword search over them.

Run 'sarkari-search serve' to start the server with the web UI.
Run 'sarkari-search --help' for available commands.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		scrapeCmd(),
		processCmd(),
		indexCmd(),
		watchCmd(),
		searchCmd(),
		evaluateCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the app config and builds a logger from the persistent
// flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Log.Format)
	return cfg, log, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sarkari-search %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
