// Package server wires all services into the HTTP server.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sarkarisearch/sarkari-search/internal/bus"
	"github.com/sarkarisearch/sarkari-search/internal/config"
	"github.com/sarkarisearch/sarkari-search/internal/embedding"
	"github.com/sarkarisearch/sarkari-search/internal/evaluation"
	"github.com/sarkarisearch/sarkari-search/internal/index"
	"github.com/sarkarisearch/sarkari-search/internal/metrics"
	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/middleware"
	"github.com/sarkarisearch/sarkari-search/internal/processor"
	"github.com/sarkarisearch/sarkari-search/internal/qdrant"
	"github.com/sarkarisearch/sarkari-search/internal/search"
	"github.com/sarkarisearch/sarkari-search/internal/summarizer"
	"github.com/sarkarisearch/sarkari-search/internal/web"
)

// Config configures the server shell.
type Config struct {
	// Version is the application version reported by /v1/version.
	Version string

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout. Generous because the SSE
	// activity stream holds connections open.
	WriteTimeout time.Duration

	// ShutdownTimeout is the graceful shutdown timeout.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns server shell defaults.
func DefaultConfig() Config {
	return Config{
		Version:         "dev",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    0,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server assembles all services behind one HTTP listener.
type Server struct {
	cfg    Config
	appCfg *config.Config
	log    *logger.Logger

	httpServer *http.Server

	// Services
	metrics    *metrics.Metrics
	eventLog   *bus.EventLog
	bus        bus.Bus
	qdrant     *qdrant.Client
	embedder   embedding.Embedder
	search     *search.Service
	summarizer *summarizer.Summarizer
	pipeline   *index.Pipeline
	runner     *evaluation.Runner
	reporter   *evaluation.Reporter

	mu      sync.Mutex
	started bool
}

// New creates a server with all dependencies wired from the app config.
func New(cfg Config, appCfg *config.Config, log *logger.Logger) (*Server, error) {
	if cfg.Version == "" {
		cfg.Version = DefaultConfig().Version
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultConfig().ReadTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		cfg:    cfg,
		appCfg: appCfg,
		log:    log,
	}

	s.metrics = metrics.NewWithConfig(appCfg.Metrics.Persistence, appCfg.Metrics.RedisURL, log)

	innerBus, err := bus.NewBus(appCfg.Bus, log)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}
	eventBus := innerBus
	if appCfg.Bus.EventLog != "" {
		elog, err := bus.OpenEventLog(appCfg.Bus.EventLog)
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		s.eventLog = elog
		eventBus = bus.NewLoggedBus(eventBus, elog, log)
		log.Info("event logging enabled", "path", appCfg.Bus.EventLog)
	}
	s.bus = bus.NewInstrumentedBus(eventBus, s.metrics)

	qdrantCfg, err := qdrantConfigFrom(appCfg.Qdrant)
	if err != nil {
		return nil, err
	}
	qc, err := qdrant.NewClient(qdrantCfg)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}
	s.qdrant = qc

	embedder, err := embedding.New(appCfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	s.embedder = embedder

	searchSvc := search.NewService(embedder, qc, log, search.Config{
		Collection:        appCfg.Qdrant.Collection,
		DefaultSize:       appCfg.Search.DefaultSize,
		KeywordCandidates: appCfg.Search.KeywordCandidates,
		DedupeByDocument:  appCfg.Search.DedupeByDocument,
	})
	searchSvc.SetRecorder(s.metrics)
	searchSvc.SetBus(s.bus)
	s.search = searchSvc

	s.summarizer = summarizer.New(embedder, log)

	proc := processor.New(processor.NewPDFExtractor(), processor.ChunkerConfig{
		ChunkSize:    appCfg.Processor.ChunkSize,
		ChunkOverlap: appCfg.Processor.ChunkOverlap,
	}, log)
	s.pipeline = index.NewPipeline(index.Config{
		Collection:      appCfg.Qdrant.Collection,
		EmbedBatchSize:  appCfg.Embedding.BatchSize,
		UpsertBatchSize: appCfg.Index.BatchSize,
		Workers:         appCfg.Index.Workers,
		SkipUnchanged:   true,
		TrackerDir:      appCfg.Index.TrackerDir,
	}, proc, embedder, qc, s.bus, log)

	evaluator := evaluation.NewEvaluator(appCfg.Evaluation.KValues)
	s.runner = evaluation.NewRunner(search.NewEvalRetriever(searchSvc), evaluator, log)
	s.reporter = evaluation.NewReporter(appCfg.Evaluation.OutputDir)

	return s, nil
}

// qdrantConfigFrom translates app config into a client config.
func qdrantConfigFrom(qcfg config.QdrantConfig) (qdrant.ClientConfig, error) {
	out := qdrant.DefaultClientConfig()
	if qcfg.CollectionPrefix != "" {
		out.CollectionPrefix = qcfg.CollectionPrefix
	}
	if qcfg.APIKey != "" {
		out.APIKey = qcfg.APIKey
	}
	if qcfg.URL == "" {
		return out, nil
	}

	host, port, useTLS, err := qdrant.ParseURL(qcfg.URL)
	if err != nil {
		return out, err
	}
	out.Host = host
	out.Port = port
	out.UseTLS = useTLS
	return out, nil
}

// Handler builds the complete HTTP handler: all routes plus the middleware
// chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.registerSystemRoutes(mux)
	search.NewHandler(s.search).RegisterRoutes(mux)
	summarizer.NewHandler(s.summarizer).RegisterRoutes(mux)
	evaluation.NewHandler(s.runner, s.reporter).RegisterRoutes(mux)
	metrics.NewHandler(s.metrics).RegisterRoutes(mux)
	mux.HandleFunc("POST /v1/index", s.handleIndex)

	if s.appCfg.EnableWeb {
		web.NewHandler(s.search, s.metrics, s.bus, s.log).RegisterRoutes(mux)
	}

	chain := []func(http.Handler) http.Handler{
		middleware.Recover(s.log),
	}
	if s.appCfg.Security.RateLimit > 0 {
		rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(s.appCfg.Security.RateLimit),
			Burst:             s.appCfg.Security.RateLimit * 2,
			CleanupInterval:   time.Minute,
		})
		chain = append(chain, rl.Middleware)
		s.log.Info("rate limiting enabled", "requests_per_second", s.appCfg.Security.RateLimit)
	}
	chain = append(chain,
		middleware.CORS(s.appCfg.Security.CORSOrigins),
		middleware.Logging(s.log),
	)

	return middleware.Chain(mux, chain...)
}

func (s *Server) registerSystemRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ready, err := s.search.Ready(r.Context())
		if err != nil || !ready {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			reason := "collection missing"
			if err != nil {
				reason = "search backend unreachable"
			}
			json.NewEncoder(w).Encode(map[string]string{"status": "not_ready", "reason": reason})
			return
		}
		writeJSON(w, map[string]string{"status": "ready"})
	})

	mux.HandleFunc("GET /v1/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"version": s.cfg.Version})
	})
}

// handleIndex triggers an indexing run over a download directory.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir string `json:"dir,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperrors.WriteError(w, apperrors.InvalidRequestError("invalid request body"))
			return
		}
	}
	if req.Dir == "" {
		req.Dir = s.appCfg.Scraper.DownloadDir
	}

	result, err := s.pipeline.IndexDirectory(r.Context(), req.Dir)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	s.metrics.RecordIndexed(result.Indexed, result.ChunksTotal, result.Failed)
	writeJSON(w, result)
}

// Start runs the HTTP server. It blocks until the listener fails or the
// server is stopped.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true

	addr := s.appCfg.Address()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.mu.Unlock()

	s.log.Info("starting http server", "addr", addr, "web_ui", s.appCfg.EnableWeb)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down and closes its services.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http shutdown error", "error", err)
		}
	}

	if err := s.bus.Close(); err != nil {
		s.log.Warn("error closing event bus", "error", err)
	}
	if s.eventLog != nil {
		if err := s.eventLog.Close(); err != nil {
			s.log.Warn("error closing event log", "error", err)
		}
	}
	if err := s.qdrant.Close(); err != nil {
		s.log.Warn("error closing qdrant client", "error", err)
	}
	if err := s.metrics.Close(); err != nil {
		s.log.Warn("error closing metrics", "error", err)
	}

	s.log.Info("server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
