// Package watch monitors the download directory and indexes new or changed
// PDFs automatically.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sarkarisearch/sarkari-search/internal/index"
	"github.com/sarkarisearch/sarkari-search/internal/pkg/logger"
)

// Indexer is the slice of the indexing pipeline the watcher drives.
type Indexer interface {
	IndexFiles(ctx context.Context, paths []string) (*index.Result, error)
}

// Config configures the watcher.
type Config struct {
	// Dir is the download directory to watch, recursively.
	Dir string

	// BatchDelay is how long to wait after the last event before indexing
	// the pending batch. Downloads arrive in bursts; debouncing avoids
	// indexing a file mid-write.
	BatchDelay time.Duration

	// IndexTimeout bounds a single batch indexing run.
	IndexTimeout time.Duration
}

// DefaultConfig returns watcher defaults.
func DefaultConfig() Config {
	return Config{
		BatchDelay:   2 * time.Second,
		IndexTimeout: 10 * time.Minute,
	}
}

// Watcher watches a directory tree and feeds changed PDFs to the indexer.
type Watcher struct {
	cfg     Config
	indexer Indexer
	log     *logger.Logger

	pendingMu  sync.Mutex
	pending    map[string]struct{}
	batchTimer *time.Timer
}

// New creates a watcher.
func New(cfg Config, indexer Indexer, log *logger.Logger) *Watcher {
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultConfig().BatchDelay
	}
	if cfg.IndexTimeout <= 0 {
		cfg.IndexTimeout = DefaultConfig().IndexTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &Watcher{
		cfg:     cfg,
		indexer: indexer,
		log:     log,
		pending: make(map[string]struct{}),
	}
}

// Run watches until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	err = filepath.WalkDir(w.cfg.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsWatcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.log.Info("watching for new documents", "dir", w.cfg.Dir)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return ctx.Err()
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, fsWatcher)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, fsWatcher *fsnotify.Watcher) {
	// A new source directory must itself be watched.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fsWatcher.Add(event.Name); err != nil {
				w.log.WithError(err).Warn("failed to watch new directory", "dir", event.Name)
			}
			return
		}
	}

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !Indexable(event.Name) {
		return
	}

	w.enqueue(event.Name)
}

// Indexable reports whether a path is a finished PDF download.
func Indexable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".pdf":
		return true
	default:
		// Partial downloads carry .part/.tmp suffixes.
		return false
	}
}

// enqueue adds a path to the pending batch and resets the debounce timer.
func (w *Watcher) enqueue(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}
	if w.batchTimer != nil {
		w.batchTimer.Stop()
	}
	w.batchTimer = time.AfterFunc(w.cfg.BatchDelay, w.flush)
}

// flush indexes everything pending.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.IndexTimeout)
	defer cancel()

	result, err := w.indexer.IndexFiles(ctx, paths)
	if err != nil {
		w.log.WithError(err).Error("batch indexing failed", "files", len(paths))
		return
	}
	w.log.Info("indexed batch",
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}

func (w *Watcher) stopTimer() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if w.batchTimer != nil {
		w.batchTimer.Stop()
	}
}
