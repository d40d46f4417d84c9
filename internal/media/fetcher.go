package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"fabel/internal/gen"
	"fabel/internal/level"
	"fabel/internal/manifest"
)

// ErrMediaFetch wraps any failure to produce or store a branch image.
// It never rolls back the committed level.
var ErrMediaFetch = errors.New("media fetch failed")

// Fetcher generates, optimizes and stores one image per branch.
type Fetcher struct {
	images      gen.ImageGenerator
	dir         string
	model       string
	aspectRatio string
	targetSize  int
	jpegQuality int
	logger      *zap.Logger
}

// NewFetcher creates a Fetcher writing into dir.
func NewFetcher(images gen.ImageGenerator, dir, model, aspectRatio string, targetSize, jpegQuality int, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		images:      images,
		dir:         dir,
		model:       model,
		aspectRatio: aspectRatio,
		targetSize:  targetSize,
		jpegQuality: jpegQuality,
		logger:      logger,
	}
}

// BranchFilename names the stored image for one branch of a level.
// branch is "a" or "b".
func BranchFilename(levelNumber int, branch string) string {
	return fmt.Sprintf("level_%d_%s.jpg", levelNumber, branch)
}

// Fetch generates the image for one branch prompt and stores it optimized.
func (f *Fetcher) Fetch(ctx context.Context, prompt, filename string) error {
	raw, err := f.images.GenerateImage(ctx, f.model, prompt, f.aspectRatio)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}

	optimized, err := Optimize(raw, f.targetSize, f.jpegQuality)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}
	path := filepath.Join(f.dir, filename)
	if err := os.WriteFile(path, optimized, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrMediaFetch, err)
	}

	f.logger.Info("image stored",
		zap.String("file", filename),
		zap.Int("size_bytes", len(optimized)))
	return nil
}

// FetchLevel fetches both branch images for a committed level. Failures are
// logged and counted, never fatal: the level stays committed and the missing
// images are picked up by Backfill.
func (f *Fetcher) FetchLevel(ctx context.Context, lvl *level.Level) int {
	fetched := 0
	branches := []struct {
		suffix string
		prompt string
	}{
		{"a", lvl.ChoiceA.ImagePrompt},
		{"b", lvl.ChoiceB.ImagePrompt},
	}

	for _, br := range branches {
		if err := f.Fetch(ctx, br.prompt, BranchFilename(lvl.LevelNumber, br.suffix)); err != nil {
			f.logger.Warn("branch image fetch failed, leaving for backfill",
				zap.Int("level", lvl.LevelNumber),
				zap.String("branch", br.suffix),
				zap.Error(err))
			continue
		}
		fetched++
	}
	return fetched
}

// Missing lists the branch image files the manifest expects but the media
// directory does not contain.
func (f *Fetcher) Missing(m manifest.Manifest) []string {
	var missing []string
	for i := range m {
		for _, suffix := range []string{"a", "b"} {
			name := BranchFilename(m[i].LevelNumber, suffix)
			if _, err := os.Stat(filepath.Join(f.dir, name)); os.IsNotExist(err) {
				missing = append(missing, name)
			}
		}
	}
	return missing
}

// Backfill walks the manifest and fetches every branch image that is not on
// disk yet. Existing files are skipped, failures are logged and skipped; the
// returned count is the number of images actually produced.
func (f *Fetcher) Backfill(ctx context.Context, m manifest.Manifest) int {
	fetched := 0
	for i := range m {
		lvl := &m[i]
		branches := []struct {
			suffix string
			prompt string
		}{
			{"a", lvl.ChoiceA.ImagePrompt},
			{"b", lvl.ChoiceB.ImagePrompt},
		}

		for _, br := range branches {
			if err := ctx.Err(); err != nil {
				return fetched
			}
			name := BranchFilename(lvl.LevelNumber, br.suffix)
			if _, err := os.Stat(filepath.Join(f.dir, name)); err == nil {
				continue
			}
			if br.prompt == "" {
				continue
			}
			if err := f.Fetch(ctx, br.prompt, name); err != nil {
				f.logger.Warn("backfill fetch failed",
					zap.Int("level", lvl.LevelNumber),
					zap.String("branch", br.suffix),
					zap.Error(err))
				continue
			}
			fetched++
		}
	}
	return fetched
}
