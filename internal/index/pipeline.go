// Package index orchestrates the indexing flow: downloaded files are
// processed into chunks, embedded, and upserted into the vector store.
package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sarkarisearch/sarkari-search/internal/bus"
	"github.com/sarkarisearch/sarkari-search/internal/embedding"
	apperrors "github.com/sarkarisearch/sarkari-search/internal/pkg/errors"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
	"github.com/sarkarisearch/sarkari-search/internal/processor"
	"github.com/sarkarisearch/sarkari-search/internal/qdrant"
)

// Store is the slice of the vector store the pipeline depends on.
type Store interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, cfg qdrant.CollectionConfig) error
	UpsertPointsBatch(ctx context.Context, collection string, points []qdrant.Point, batchSize int) error
	DeletePoints(ctx context.Context, collection string, filter qdrant.DeleteFilter) error
}

// Config configures the indexing pipeline.
type Config struct {
	// Collection is the target collection (without prefix).
	Collection string

	// EmbedBatchSize is the batch size for embedding generation.
	EmbedBatchSize int

	// UpsertBatchSize is the batch size for vector store upserts.
	UpsertBatchSize int

	// Workers is the number of documents processed in parallel.
	Workers int

	// SkipUnchanged skips files whose derived document ID is already indexed.
	SkipUnchanged bool

	// TrackerDir persists indexing state between runs ("" = in-memory only).
	TrackerDir string
}

// DefaultConfig returns pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Collection:      "government_documents",
		EmbedBatchSize:  32,
		UpsertBatchSize: 100,
		Workers:         4,
		SkipUnchanged:   true,
	}
}

// Pipeline drives documents through processing, embedding and upserting.
type Pipeline struct {
	cfg       Config
	processor *processor.Processor
	embedder  embedding.Embedder
	store     Store
	bus       bus.Bus
	tracker   *Tracker
	log       *logger.Logger
}

// NewPipeline creates an indexing pipeline. The event bus is optional; when
// nil, event publishing is disabled.
func NewPipeline(cfg Config, proc *processor.Processor, embedder embedding.Embedder, store Store, eventBus bus.Bus, log *logger.Logger) *Pipeline {
	if cfg.Collection == "" {
		cfg.Collection = DefaultConfig().Collection
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultConfig().EmbedBatchSize
	}
	if cfg.UpsertBatchSize <= 0 {
		cfg.UpsertBatchSize = DefaultConfig().UpsertBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if log == nil {
		log = logger.Default()
	}

	tracker := NewTracker()
	if cfg.TrackerDir != "" {
		if err := tracker.Load(cfg.TrackerDir); err != nil {
			log.WithError(err).Warn("failed to load index tracker, starting fresh")
		}
	}

	return &Pipeline{
		cfg:       cfg,
		processor: proc,
		embedder:  embedder,
		store:     store,
		bus:       eventBus,
		tracker:   tracker,
		log:       log,
	}
}

// Result summarizes an indexing run.
type Result struct {
	Collection  string        `json:"collection"`
	Indexed     int           `json:"indexed"`
	Skipped     int           `json:"skipped"`
	Scanned     int           `json:"scanned"`
	Failed      int           `json:"failed"`
	ChunksTotal int           `json:"chunks_total"`
	Duration    time.Duration `json:"duration"`
	Errors      []FileError   `json:"errors,omitempty"`
}

// FileError records a per-file indexing failure.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// IndexDirectory walks a download directory and indexes every PDF in it.
// Files are processed concurrently; a failing file is recorded and skipped,
// not fatal.
func (p *Pipeline) IndexDirectory(ctx context.Context, dir string) (*Result, error) {
	paths, err := collectPDFs(dir)
	if err != nil {
		return nil, apperrors.IndexingError("failed to walk download directory", err)
	}
	return p.IndexFiles(ctx, paths)
}

// IndexFiles indexes the given files into the configured collection.
func (p *Pipeline) IndexFiles(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	result := &Result{Collection: p.cfg.Collection}

	if len(paths) == 0 {
		return result, nil
	}

	if err := p.ensureCollection(ctx); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome, err := p.indexFile(gctx, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, FileError{Path: path, Message: err.Error()})
				p.publish(gctx, bus.TopicIndexingFailed, map[string]string{
					"path":  path,
					"error": err.Error(),
				})
				return nil
			}

			switch outcome.status {
			case statusSkipped:
				result.Skipped++
			case statusScanned:
				result.Scanned++
			case statusIndexed:
				result.Indexed++
				result.ChunksTotal += outcome.chunks
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.cfg.TrackerDir != "" {
		if err := p.tracker.Save(p.cfg.TrackerDir); err != nil {
			p.log.WithError(err).Warn("failed to persist index tracker")
		}
	}

	result.Duration = time.Since(start)

	p.log.Info("indexing complete",
		"collection", p.cfg.Collection,
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"scanned", result.Scanned,
		"failed", result.Failed,
		"chunks", result.ChunksTotal,
		"duration", result.Duration,
	)

	return result, nil
}

type fileStatus int

const (
	statusIndexed fileStatus = iota
	statusSkipped
	statusScanned
)

type fileOutcome struct {
	status fileStatus
	chunks int
}

// indexFile runs one file through process → embed → upsert. When the file
// changed since the last run, the previous document's points are deleted
// first so stale chunks do not linger.
func (p *Pipeline) indexFile(ctx context.Context, path string) (fileOutcome, error) {
	docID, err := processor.GenerateDocID(path)
	if err != nil {
		return fileOutcome{}, apperrors.IndexingError("failed to stat file", err)
	}

	if p.cfg.SkipUnchanged && p.tracker.IsCurrent(p.cfg.Collection, path, docID) {
		return fileOutcome{status: statusSkipped}, nil
	}

	doc, err := p.processor.Process(path, processor.Options{})
	if err != nil {
		return fileOutcome{}, err
	}

	// Drop points of the superseded version, if any.
	if prevID, ok := p.tracker.DocID(p.cfg.Collection, path); ok && prevID != doc.DocID {
		if err := p.store.DeletePoints(ctx, p.cfg.Collection, qdrant.DeleteFilter{DocID: prevID}); err != nil {
			p.log.WithError(err).Warn("failed to delete stale points", "doc_id", prevID)
		}
	}

	if doc.IsScanned || len(doc.Chunks) == 0 {
		p.tracker.Set(p.cfg.Collection, path, doc.DocID)
		return fileOutcome{status: statusScanned}, nil
	}

	points, err := p.buildPoints(ctx, doc)
	if err != nil {
		return fileOutcome{}, err
	}

	if err := p.store.UpsertPointsBatch(ctx, p.cfg.Collection, points, p.cfg.UpsertBatchSize); err != nil {
		return fileOutcome{}, apperrors.IndexingError("failed to upsert points", err)
	}

	p.tracker.Set(p.cfg.Collection, path, doc.DocID)
	p.publish(ctx, bus.TopicDocumentIndexed, map[string]any{
		"doc_id": doc.DocID,
		"source": doc.Source,
		"title":  doc.Title,
		"chunks": len(doc.Chunks),
	})

	return fileOutcome{status: statusIndexed, chunks: len(doc.Chunks)}, nil
}

// buildPoints embeds a document's chunks and pairs them with payloads.
func (p *Pipeline) buildPoints(ctx context.Context, doc *processor.Document) ([]qdrant.Point, error) {
	texts := make([]string, len(doc.Chunks))
	for i, c := range doc.Chunks {
		texts[i] = c.Text
	}

	vectors, err := embedding.EmbedBatched(ctx, p.embedder, texts, p.cfg.EmbedBatchSize)
	if err != nil {
		return nil, apperrors.EmbeddingError("failed to embed chunks", err)
	}

	now := time.Now().UTC()
	points := make([]qdrant.Point, len(doc.Chunks))
	for i, c := range doc.Chunks {
		points[i] = qdrant.Point{
			ID:     qdrant.PointID(doc.DocID, c.ChunkID),
			Vector: vectors[i],
			Payload: qdrant.PointPayload{
				DocID:     doc.DocID,
				ChunkID:   c.ChunkID,
				Title:     doc.Title,
				Source:    doc.Source,
				Section:   doc.Section,
				Date:      doc.Date,
				Text:      c.Text,
				Page:      c.Page,
				Filename:  doc.Filename,
				IndexedAt: now,
			},
		}
	}
	return points, nil
}

// ensureCollection creates the target collection when missing.
func (p *Pipeline) ensureCollection(ctx context.Context) error {
	exists, err := p.store.CollectionExists(ctx, p.cfg.Collection)
	if err != nil {
		return apperrors.IndexingError("failed to check collection", err)
	}
	if exists {
		return nil
	}

	cfg := qdrant.DefaultCollectionConfig(p.cfg.Collection)
	cfg.VectorSize = uint64(p.embedder.Dimension())
	if err := p.store.CreateCollection(ctx, cfg); err != nil {
		return apperrors.IndexingError("failed to create collection", err)
	}
	return nil
}

// RemoveStale deletes points for files that no longer exist on disk.
func (p *Pipeline) RemoveStale(ctx context.Context, currentPaths []string) (int, error) {
	removed := p.tracker.Removed(p.cfg.Collection, currentPaths)
	for _, path := range removed {
		docID, ok := p.tracker.DocID(p.cfg.Collection, path)
		if !ok {
			continue
		}
		if err := p.store.DeletePoints(ctx, p.cfg.Collection, qdrant.DeleteFilter{DocID: docID}); err != nil {
			return 0, apperrors.IndexingError("failed to delete stale points", err)
		}
		p.tracker.Remove(p.cfg.Collection, path)
	}

	if p.cfg.TrackerDir != "" && len(removed) > 0 {
		if err := p.tracker.Save(p.cfg.TrackerDir); err != nil {
			p.log.WithError(err).Warn("failed to persist index tracker")
		}
	}

	return len(removed), nil
}

func (p *Pipeline) publish(ctx context.Context, topic string, payload any) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, topic, bus.NewEvent(topic, "indexer", payload)); err != nil {
		p.log.Debug("failed to publish index event", "topic", topic, "error", err)
	}
}

// collectPDFs returns all .pdf files under dir, sorted by walk order.
func collectPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
