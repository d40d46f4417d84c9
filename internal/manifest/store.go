// Package manifest persists the ordered collection of committed levels.
// The manifest file is the sole source of truth for resumption: each
// successful level is durably recorded (full-file rewrite via temp file +
// rename) before any image generation for it is attempted.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"fabel/internal/level"
)

// Manifest is the ordered sequence of all committed levels.
type Manifest []level.Level

// Store owns the persisted manifest file. All mutation goes through Append;
// callers treat loaded manifests as snapshots.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a Store for the given manifest path.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the persisted manifest. A missing file is an empty manifest; a
// corrupt file is logged and treated as empty so a damaged run starts fresh
// instead of wedging the pipeline.
func (s *Store) Load() (Manifest, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", s.path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("manifest is corrupt, starting fresh",
			zap.String("path", s.path),
			zap.Error(err))
		return nil, nil
	}
	return m, nil
}

// NextLevel computes the next level number to generate: the override when
// positive, otherwise one past the highest committed level, otherwise 1.
func (s *Store) NextLevel(m Manifest, override int) int {
	if override > 0 {
		return override
	}
	next := 1
	for _, lvl := range m {
		if lvl.LevelNumber >= next {
			next = lvl.LevelNumber + 1
		}
	}
	return next
}

// Append commits a level: appends it to the manifest and rewrites the whole
// file atomically. The rename is the durability boundary; on any error the
// previous on-disk manifest is untouched.
func (s *Store) Append(m Manifest, lvl *level.Level) (Manifest, error) {
	updated := append(m, *lvl)

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return m, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return m, fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return m, fmt.Errorf("failed to write temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return m, fmt.Errorf("failed to rename temp manifest: %w", err)
	}

	s.logger.Info("level committed",
		zap.Int("level", lvl.LevelNumber),
		zap.Int("manifest_size", len(updated)))
	return updated, nil
}
