package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Tracker remembers which document ID each file was last indexed under.
// Document IDs are derived from path, size and mtime, so an unchanged file
// keeps its ID and can be skipped, while a changed file gets a new ID and
// the old one identifies the stale points to delete.
type Tracker struct {
	mu          sync.RWMutex
	collections map[string]*collectionState
}

type collectionState struct {
	DocIDs    map[string]string    `json:"doc_ids"`
	IndexedAt map[string]time.Time `json:"indexed_at"`
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		collections: make(map[string]*collectionState),
	}
}

func (t *Tracker) state(collection string) *collectionState {
	if st, ok := t.collections[collection]; ok {
		return st
	}
	st := &collectionState{
		DocIDs:    make(map[string]string),
		IndexedAt: make(map[string]time.Time),
	}
	t.collections[collection] = st
	return st
}

// IsCurrent reports whether path is already indexed under docID.
func (t *Tracker) IsCurrent(collection, path, docID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.collections[collection]
	if !ok {
		return false
	}
	existing, ok := st.DocIDs[path]
	return ok && existing == docID
}

// DocID returns the document ID path was last indexed under.
func (t *Tracker) DocID(collection, path string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.collections[collection]
	if !ok {
		return "", false
	}
	id, ok := st.DocIDs[path]
	return id, ok
}

// Set records that path is indexed under docID.
func (t *Tracker) Set(collection, path, docID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.state(collection)
	st.DocIDs[path] = docID
	st.IndexedAt[path] = time.Now().UTC()
}

// Remove drops a path from tracking.
func (t *Tracker) Remove(collection, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.collections[collection]
	if !ok {
		return
	}
	delete(st.DocIDs, path)
	delete(st.IndexedAt, path)
}

// Removed returns tracked paths that are absent from currentPaths.
func (t *Tracker) Removed(collection string, currentPaths []string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.collections[collection]
	if !ok {
		return nil
	}

	current := make(map[string]struct{}, len(currentPaths))
	for _, p := range currentPaths {
		current[p] = struct{}{}
	}

	var removed []string
	for path := range st.DocIDs {
		if _, exists := current[path]; !exists {
			removed = append(removed, path)
		}
	}
	return removed
}

// Count returns the number of tracked files for a collection.
func (t *Tracker) Count(collection string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.collections[collection]
	if !ok {
		return 0
	}
	return len(st.DocIDs)
}

// Save persists the tracker as one JSON file per collection.
func (t *Tracker) Save(dir string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for collection, st := range t.collections {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(dir, collection+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Load restores the tracker from disk. A missing directory is not an error.
func (t *Tracker) Load(dir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}

		var st collectionState
		if err := json.Unmarshal(data, &st); err != nil {
			return err
		}
		if st.DocIDs == nil {
			st.DocIDs = make(map[string]string)
		}
		if st.IndexedAt == nil {
			st.IndexedAt = make(map[string]time.Time)
		}

		t.collections[strings.TrimSuffix(entry.Name(), ".json")] = &st
	}
	return nil
}
