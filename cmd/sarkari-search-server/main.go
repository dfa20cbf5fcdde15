// Package main provides the sarkari-search-server binary: the HTTP server
// without the pipeline CLI, for container deployments.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sarkarisearch/sarkari-search/internal/config"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sarkari-search-server",
		Short: "Sarkari Search Server - HTTP search API and web UI",
		Long: `Sarkari Search Server serves semantic and keyword search over indexed
government documents.

The server exposes:
  - JSON API under /v1 (search, summarize, evaluation, analytics)
  - Prometheus metrics on /metrics
  - Web UI on / (unless disabled)`,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().IntP("port", "p", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().String("qdrant", "", "Qdrant URL (overrides config)")
	rootCmd.Flags().Bool("no-web", false, "disable the web UI")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sarkari-search-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if qdrantURL, _ := cmd.Flags().GetString("qdrant"); qdrantURL != "" {
		cfg.Qdrant.URL = qdrantURL
	}
	if noWeb, _ := cmd.Flags().GetBool("no-web"); noWeb {
		cfg.EnableWeb = false
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Log.Format)

	log.Info("starting sarkari-search-server", "version", version, "addr", cfg.Address())

	srv, err := server.New(server.Config{Version: version}, cfg, log)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutdown signal received", "signal", sig.String())
	}

	return srv.Stop(context.Background())
}
