// Package dataset loads the item collection from YAML files and serves it as
// an atomically swapped in-memory snapshot.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/open-atom-club/deadlines/internal/model"
)

// Loader reads every *.yml / *.yaml file in a directory and merges them into
// one collection. A load replaces the previous snapshot atomically; readers
// always see either the old or the new collection, never a partial one.
type Loader struct {
	dir string
	log zerolog.Logger

	mu    sync.RWMutex
	items []model.Item
}

// NewLoader creates a loader for the given data directory.
func NewLoader(dir string, log zerolog.Logger) *Loader {
	return &Loader{dir: dir, log: log}
}

// Items returns the current snapshot. The slice must be treated as read-only.
func (l *Loader) Items() []model.Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items
}

// Load re-reads the data directory and swaps in the merged collection.
// A missing directory or an unreadable single file is logged and skipped so
// the service keeps serving the last-known (or empty) snapshot; Load fails
// only when nothing could be read at all and nothing was held before.
func (l *Loader) Load() error {
	files, err := l.dataFiles()
	if err != nil {
		l.log.Error().Err(err).Str("dir", l.dir).Msg("data directory unreadable")
		return fmt.Errorf("list data dir: %w", err)
	}

	var merged []model.Item
	loaded := 0
	for _, path := range files {
		items, err := readFile(path)
		if err != nil {
			l.log.Error().Err(err).Str("file", path).Msg("skipping unreadable data file")
			continue
		}
		merged = append(merged, items...)
		loaded++
	}

	merged = Validate(merged, l.log)

	l.mu.Lock()
	l.items = merged
	l.mu.Unlock()

	l.log.Info().
		Int("files", loaded).
		Int("items", len(merged)).
		Msg("data snapshot loaded")
	return nil
}

// dataFiles lists the YAML files under the data directory in a stable order.
func (l *Loader) dataFiles() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yml", ".yaml":
			files = append(files, filepath.Join(l.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func readFile(path string) ([]model.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var items []model.Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return items, nil
}
