package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarkarisearch/sarkari-search/internal/config"
	"github.com/sarkarisearch/sarkari-search/internal/embedding"
	"github.com/sarkarisearch/sarkari-search/internal/evaluation"
	"github.com/sarkarisearch/sarkari-search/internal/index"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/processor"
	"github.com/sarkarisearch/sarkari-search/internal/qdrant"
	"github.com/sarkarisearch/sarkari-search/internal/scraper"
	"github.com/sarkarisearch/sarkari-search/internal/search"
	"github.com/sarkarisearch/sarkari-search/internal/server"
	"github.com/sarkarisearch/sarkari-search/internal/watch"
)

// openStore builds the vector store client from config.
func openStore(cfg *config.Config) (*qdrant.Client, error) {
	clientCfg := qdrant.DefaultClientConfig()
	if cfg.Qdrant.CollectionPrefix != "" {
		clientCfg.CollectionPrefix = cfg.Qdrant.CollectionPrefix
	}
	clientCfg.APIKey = cfg.Qdrant.APIKey
	if cfg.Qdrant.URL != "" {
		host, port, useTLS, err := qdrant.ParseURL(cfg.Qdrant.URL)
		if err != nil {
			return nil, err
		}
		clientCfg.Host = host
		clientCfg.Port = port
		clientCfg.UseTLS = useTLS
	}
	return qdrant.NewClient(clientCfg)
}

// buildSearchService assembles the search service and its store client.
func buildSearchService(cfg *config.Config, log *logger.Logger) (*search.Service, *qdrant.Client, error) {
	qc, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		qc.Close()
		return nil, nil, err
	}
	svc := search.NewService(embedder, qc, log, search.Config{
		Collection:        cfg.Qdrant.Collection,
		DefaultSize:       cfg.Search.DefaultSize,
		KeywordCandidates: cfg.Search.KeywordCandidates,
		DedupeByDocument:  cfg.Search.DedupeByDocument,
	})
	return svc, qc, nil
}

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [source]",
		Short: "Discover and download documents from agency websites",
		Long: `Scrape agency listing pages and download relevant PDFs into the
download directory. With no argument all agencies are scraped; otherwise
pass one of: rbi, income_tax, caqm.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fetcher := scraper.NewFetcher(scraper.FetcherConfig{
				MaxRetries:        cfg.Scraper.MaxRetries,
				RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
				Timeout:           time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
			})

			var scrapers []scraper.Scraper
			if len(args) == 1 {
				s, err := scraper.BySource(fetcher, args[0])
				if err != nil {
					return err
				}
				scrapers = []scraper.Scraper{s}
			} else {
				scrapers = scraper.All(fetcher)
			}

			mgr := scraper.NewManager(fetcher, cfg.Scraper.DownloadDir, cfg.Scraper.CitizenOnly, log)
			total := 0
			for _, s := range scrapers {
				downloaded, err := mgr.Run(cmd.Context(), s)
				if err != nil {
					log.WithSource(s.Source()).WithError(err).Error("scrape failed")
					continue
				}
				fmt.Printf("%s: %d documents downloaded\n", s.Source(), len(downloaded))
				total += len(downloaded)
			}
			fmt.Printf("total: %d documents in %s\n", total, cfg.Scraper.DownloadDir)
			return nil
		},
	}
	return cmd
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <file.pdf>",
		Short: "Extract and chunk a single PDF (for inspection)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			proc := processor.New(processor.NewPDFExtractor(), processor.ChunkerConfig{
				ChunkSize:    cfg.Processor.ChunkSize,
				ChunkOverlap: cfg.Processor.ChunkOverlap,
			}, log)

			meta := processor.ExtractFileMetadata(args[0])
			doc, err := proc.Process(args[0], processor.Options{
				Title:   processor.TitleFromFilename(meta.Filename),
				Date:    meta.Date,
				Section: meta.Section,
			})
			if err != nil {
				return err
			}

			fmt.Printf("doc_id:   %s\n", doc.DocID)
			fmt.Printf("title:    %s\n", doc.Title)
			fmt.Printf("source:   %s\n", doc.Source)
			fmt.Printf("pages:    %d (scanned: %v)\n", doc.NumPages, doc.IsScanned)
			fmt.Printf("chunks:   %d\n", len(doc.Chunks))
			fmt.Printf("text len: %d chars\n", len(doc.FullText))
			return nil
		},
	}
}

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Process, embed and index downloaded documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dir := cfg.Scraper.DownloadDir
			if len(args) == 1 {
				dir = args[0]
			}

			qc, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer qc.Close()

			embedder, err := embedding.New(cfg.Embedding)
			if err != nil {
				return err
			}

			proc := processor.New(processor.NewPDFExtractor(), processor.ChunkerConfig{
				ChunkSize:    cfg.Processor.ChunkSize,
				ChunkOverlap: cfg.Processor.ChunkOverlap,
			}, log)

			pipeline := index.NewPipeline(index.Config{
				Collection:      cfg.Qdrant.Collection,
				EmbedBatchSize:  cfg.Embedding.BatchSize,
				UpsertBatchSize: cfg.Index.BatchSize,
				Workers:         cfg.Index.Workers,
				SkipUnchanged:   true,
				TrackerDir:      cfg.Index.TrackerDir,
			}, proc, embedder, qc, nil, log)

			result, err := pipeline.IndexDirectory(cmd.Context(), dir)
			if err != nil {
				return err
			}

			fmt.Printf("collection: %s\n", result.Collection)
			fmt.Printf("indexed:    %d documents (%d chunks)\n", result.Indexed, result.ChunksTotal)
			fmt.Printf("skipped:    %d unchanged\n", result.Skipped)
			fmt.Printf("scanned:    %d without extractable text\n", result.Scanned)
			fmt.Printf("failed:     %d\n", result.Failed)
			for _, fe := range result.Errors {
				fmt.Printf("  %s: %s\n", fe.Path, fe.Message)
			}
			fmt.Printf("duration:   %s\n", result.Duration.Round(time.Millisecond))
			return nil
		},
	}
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch the download directory and index new documents automatically",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			dir := cfg.Scraper.DownloadDir
			if len(args) == 1 {
				dir = args[0]
			}

			qc, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer qc.Close()

			embedder, err := embedding.New(cfg.Embedding)
			if err != nil {
				return err
			}

			proc := processor.New(processor.NewPDFExtractor(), processor.ChunkerConfig{
				ChunkSize:    cfg.Processor.ChunkSize,
				ChunkOverlap: cfg.Processor.ChunkOverlap,
			}, log)

			pipeline := index.NewPipeline(index.Config{
				Collection:      cfg.Qdrant.Collection,
				EmbedBatchSize:  cfg.Embedding.BatchSize,
				UpsertBatchSize: cfg.Index.BatchSize,
				Workers:         cfg.Index.Workers,
				SkipUnchanged:   true,
				TrackerDir:      cfg.Index.TrackerDir,
			}, proc, embedder, qc, nil, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watch.New(watch.Config{Dir: dir}, pipeline, log)
			if err := w.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}
	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			keyword, _ := cmd.Flags().GetBool("keyword")
			size, _ := cmd.Flags().GetInt("size")
			source, _ := cmd.Flags().GetString("source")
			section, _ := cmd.Flags().GetString("section")

			svc, qc, err := buildSearchService(cfg, log)
			if err != nil {
				return err
			}
			defer qc.Close()

			req := search.Request{
				Query:   strings.Join(args, " "),
				Size:    size,
				Source:  source,
				Section: section,
			}

			var resp *search.Response
			if keyword {
				resp, err = svc.KeywordSearch(cmd.Context(), req)
			} else {
				resp, err = svc.SemanticSearch(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			fmt.Printf("%d results (%s, %dms)\n\n", resp.Total, resp.Strategy, resp.TookMs)
			for i, r := range resp.Results {
				fmt.Printf("%2d. [%.3f] %s\n", i+1, r.Score, r.Title)
				fmt.Printf("    %s", r.Source)
				if r.Section != "" {
					fmt.Printf(" / %s", r.Section)
				}
				if r.Date != "" {
					fmt.Printf(" / %s", r.Date)
				}
				fmt.Printf("  (%s)\n", r.DocID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("keyword", false, "use keyword search instead of semantic")
	cmd.Flags().Int("size", 0, "number of results (0 = config default)")
	cmd.Flags().String("source", "", "restrict to one agency (rbi, income_tax, caqm)")
	cmd.Flags().String("section", "", "restrict to one document section")
	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the retrieval evaluation suite against the live index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			queryFile, _ := cmd.Flags().GetString("queries")
			outputDir, _ := cmd.Flags().GetString("output")
			if queryFile == "" {
				queryFile = cfg.Evaluation.QueryFile
			}
			if outputDir == "" {
				outputDir = cfg.Evaluation.OutputDir
			}

			svc, qc, err := buildSearchService(cfg, log)
			if err != nil {
				return err
			}
			defer qc.Close()

			evaluator := evaluation.NewEvaluator(cfg.Evaluation.KValues)
			runner := evaluation.NewRunner(search.NewEvalRetriever(svc), evaluator, log)

			result, err := runner.RunFromFile(cmd.Context(), queryFile)
			if err != nil {
				return err
			}

			evaluation.WriteSummary(os.Stdout, result)

			reporter := evaluation.NewReporter(outputDir)
			path, err := reporter.WriteReport(result)
			if err != nil {
				return err
			}
			fmt.Printf("\nreport written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().String("queries", "", "labeled query file (default from config)")
	cmd.Flags().String("output", "", "report output directory (default from config)")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the search server with web UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("no-web") {
				cfg.EnableWeb = false
			}

			return runServer(cfg, log)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP server port")
	cmd.Flags().Bool("no-web", false, "disable the web UI")
	return cmd
}

// runServer starts the server and blocks until a shutdown signal arrives.
func runServer(cfg *config.Config, log *logger.Logger) error {
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
