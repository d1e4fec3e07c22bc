// Package cache persists the enriched dataset between runs so the API
// is only contacted when metrics actually need refreshing.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ornithology/pkg/logger"
)

// Store reads and writes one JSON-encoded value at a fixed path.
// Writes are atomic: a replace either completes or leaves the previous
// value intact.
type Store[T any] struct {
	path   string
	logger logger.Logger
}

// NewStore creates a store at path. The parent directory is created on
// the first save.
func NewStore[T any](path string) *Store[T] {
	return &Store[T]{
		path:   path,
		logger: logger.GetLogger(),
	}
}

// Path reports where the store lives.
func (s *Store[T]) Path() string {
	return s.path
}

// Exists checks whether a cached value is present.
func (s *Store[T]) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the cached value. A missing file is not an error and
// returns nil; a file that cannot be decoded is.
func (s *Store[T]) Load() (*T, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var value T
	if err := json.NewDecoder(file).Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}

	s.logger.DebugWithFields("cache loaded", map[string]interface{}{
		"path": s.path,
	})

	return &value, nil
}

// Save writes the value to disk atomically.
func (s *Store[T]) Save(value *T) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	// Ensure data is written to disk
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync cache file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	// Atomically replace the old cache file
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	s.logger.DebugWithFields("cache saved", map[string]interface{}{
		"path": s.path,
	})

	return nil
}

// Delete removes the cached value. Deleting an absent cache is fine.
func (s *Store[T]) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}
