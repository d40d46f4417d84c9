package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fabel/internal/gen"
	"fabel/internal/manifest"
	"fabel/internal/media"
	"fabel/internal/outline"
	"fabel/internal/pipeline"
	"fabel/internal/vocab"
)

var (
	generateLimit int
	startBatch    int
)

// generateCmd runs the batch pipeline
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the next levels of story content",
	Long: `Resumes from the persisted manifest and generates up to --limit new
levels: text first (committed durably per level), then one illustration per
branch. Interrupting between levels is safe; the next run picks up where
this one stopped.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateLimit, "limit", 1, "maximum levels to generate this run")
	generateCmd.Flags().IntVar(&startBatch, "start-batch", 0, "force a specific next level number (0 = resume)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	// Stop cleanly between suspension points on Ctrl-C.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpus, err := vocab.LoadCorpus(cfg.Paths.VocabFile)
	if err != nil {
		return err
	}
	chapters, err := outline.Load(cfg.Paths.OutlineFile)
	if err != nil {
		return fmt.Errorf("narrative outline unavailable (run 'fabel outline' first): %w", err)
	}

	client, err := gen.NewGeminiClient(ctx, cfg.APIKey, cfg.GenerationTimeout(), logger)
	if err != nil {
		return err
	}

	store := manifest.NewStore(cfg.Paths.ManifestFile, logger)
	fetcher := media.NewFetcher(client, cfg.Paths.MediaDir, cfg.Media.Model,
		cfg.Media.AspectRatio, cfg.Media.TargetSize, cfg.Media.JPEGQuality, logger)
	caches := gen.NewCacheManager(client, cfg.CacheTTL(), logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	driver := pipeline.New(cfg, corpus, chapters, client, caches, store, fetcher, rng, logger)

	sum, err := driver.Run(ctx, generateLimit, startBatch)
	if sum.LevelsCommitted > 0 || sum.LevelsSkipped > 0 {
		fmt.Printf("Committed %d level(s), skipped %d, fetched %d image(s). Next level: %d\n",
			sum.LevelsCommitted, sum.LevelsSkipped, sum.ImagesFetched, sum.NextLevel)
	}
	return err
}
