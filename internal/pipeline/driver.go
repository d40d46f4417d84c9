// Package pipeline drives the batch run: it windows the corpus, resolves
// the chapter context, generates and commits levels, and fetches media, one
// level at a time. Everything is strictly sequential; the only shared
// mutable resource is the manifest file and only this driver touches it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"fabel/internal/config"
	"fabel/internal/gen"
	"fabel/internal/level"
	"fabel/internal/manifest"
	"fabel/internal/media"
	"fabel/internal/outline"
	"fabel/internal/vocab"
)

// Driver orchestrates one generation run.
type Driver struct {
	cfg      *config.Config
	corpus   vocab.Corpus
	chapters []outline.Chapter
	text     gen.TextGenerator
	caches   *gen.CacheManager
	store    *manifest.Store
	fetcher  *media.Fetcher
	rng      *rand.Rand
	logger   *zap.Logger
}

// New creates a Driver. rng is the pipeline-level randomness used for
// legacy-word sampling; pass a seeded source in tests.
func New(cfg *config.Config, corpus vocab.Corpus, chapters []outline.Chapter,
	text gen.TextGenerator, caches *gen.CacheManager,
	store *manifest.Store, fetcher *media.Fetcher,
	rng *rand.Rand, logger *zap.Logger) *Driver {
	return &Driver{
		cfg:      cfg,
		corpus:   corpus,
		chapters: chapters,
		text:     text,
		caches:   caches,
		store:    store,
		fetcher:  fetcher,
		rng:      rng,
		logger:   logger,
	}
}

// Summary reports what a run accomplished.
type Summary struct {
	LevelsCommitted int
	LevelsSkipped   int
	ImagesFetched   int
	NextLevel       int // where a subsequent run would resume
}

// Run executes up to limit levels, resuming from the persisted manifest
// (or from startOverride when positive). It returns when the limit is
// reached, the corpus is exhausted, or a fatal error occurs; transient
// generation failures are retried up to MaxAttempts per level and then the
// level is permanently skipped. Skipped levels count against the limit so a
// persistently failing window cannot loop forever.
func (d *Driver) Run(ctx context.Context, limit, startOverride int) (Summary, error) {
	var sum Summary
	if limit <= 0 {
		limit = 1
	}

	m, err := d.store.Load()
	if err != nil {
		return sum, err
	}
	next := d.store.NextLevel(m, startOverride)

	// Establish the shared-context cache once per run; a nil handle means
	// inline mode with the fallback model.
	sharedCtx := level.BuildSharedContext(d.corpus.Anchor(d.cfg.Vocabulary.AnchorPoolSize), d.chapters)
	handle, model := d.caches.Establish(ctx, d.cfg.Cache.Models, sharedCtx)
	if model == "" {
		model = d.cfg.Generation.Model
	}
	generator := level.NewGenerator(d.text, model, d.logger)

	d.logger.Info("pipeline starting",
		zap.Int("next_level", next),
		zap.Int("limit", limit),
		zap.Int("corpus_words", len(d.corpus)),
		zap.Bool("cached_context", handle != nil))

	batch := d.cfg.Vocabulary.BatchSize
	for processed := 0; processed < limit; processed++ {
		windowStart := (next - 1) * batch
		if windowStart >= len(d.corpus) {
			d.logger.Info("vocabulary corpus exhausted", zap.Int("next_level", next))
			break
		}

		target := d.corpus.Target(next, batch)
		legacy := d.corpus.Legacy(windowStart, batch, d.cfg.Vocabulary.LegacyPoolSize, d.rng)

		current, dest, err := outline.CurrentAndNext(d.chapters, next)
		if err != nil {
			return sum, err // empty outline is fatal, never retried
		}

		lvl, err := d.generateWithRetry(ctx, generator, next, target, legacy, current, dest, handle)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				sum.NextLevel = next
				return sum, err
			}
			d.logger.Error("level permanently skipped",
				zap.Int("level", next),
				zap.Error(err))
			sum.LevelsSkipped++
			next++
			continue
		}

		// Durability boundary: the level is committed before any image
		// fetch, so a crash mid-media loses pixels, never text.
		m, err = d.store.Append(m, lvl)
		if err != nil {
			return sum, fmt.Errorf("failed to commit level %d: %w", next, err)
		}
		sum.LevelsCommitted++

		sum.ImagesFetched += d.fetcher.FetchLevel(ctx, lvl)

		next++
		if processed+1 < limit {
			if err := d.pause(ctx); err != nil {
				sum.NextLevel = next
				return sum, err
			}
		}
	}

	sum.NextLevel = next
	d.logger.Info("pipeline finished",
		zap.Int("committed", sum.LevelsCommitted),
		zap.Int("skipped", sum.LevelsSkipped),
		zap.Int("images", sum.ImagesFetched),
		zap.Int("next_level", sum.NextLevel))
	return sum, nil
}

// generateWithRetry attempts one level up to MaxAttempts times. Schema
// violations and transient failures are both retried; the distinction only
// matters for logging. Context cancellation aborts immediately.
func (d *Driver) generateWithRetry(ctx context.Context, generator *level.Generator, levelNumber int,
	target, legacy []string, current, dest outline.Chapter, handle *gen.CacheHandle) (*level.Level, error) {

	var lastErr error
	for attempt := 1; attempt <= d.cfg.Pipeline.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lvl, err := generator.Generate(ctx, levelNumber, target, legacy, current, dest, handle)
		if err == nil {
			return lvl, nil
		}
		lastErr = err

		reason := "transient"
		if errors.Is(err, level.ErrSchemaViolation) {
			reason = "schema violation"
		}
		d.logger.Warn("level generation attempt failed",
			zap.Int("level", levelNumber),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", d.cfg.Pipeline.MaxAttempts),
			zap.String("reason", reason),
			zap.Error(err))
	}
	return nil, fmt.Errorf("exhausted %d attempts: %w", d.cfg.Pipeline.MaxAttempts, lastErr)
}

// pause applies the inter-level courtesy delay, honoring cancellation.
func (d *Driver) pause(ctx context.Context) error {
	delay := d.cfg.InterLevelDelay()
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
