package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fabel/internal/gen"
	"fabel/internal/manifest"
	"fabel/internal/media"
)

// backfillCmd repairs missing branch images
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate images missing from committed levels",
	Long: `Walks the manifest and generates any branch illustration whose file is
absent from the media directory. Committed text is never touched; this only
fills the non-durable media half of interrupted or failed levels.`,
	RunE: runBackfill,
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := manifest.NewStore(cfg.Paths.ManifestFile, logger)
	m, err := store.Load()
	if err != nil {
		return err
	}
	if len(m) == 0 {
		fmt.Println("Manifest is empty, nothing to backfill.")
		return nil
	}

	client, err := gen.NewGeminiClient(ctx, cfg.APIKey, cfg.GenerationTimeout(), logger)
	if err != nil {
		return err
	}
	fetcher := media.NewFetcher(client, cfg.Paths.MediaDir, cfg.Media.Model,
		cfg.Media.AspectRatio, cfg.Media.TargetSize, cfg.Media.JPEGQuality, logger)

	missing := fetcher.Missing(m)
	if len(missing) == 0 {
		fmt.Printf("All %d level(s) have their images.\n", len(m))
		return nil
	}

	fmt.Printf("Backfilling %d missing image(s)...\n", len(missing))
	fetched := fetcher.Backfill(ctx, m)
	fmt.Printf("Backfill complete: %d of %d image(s) generated.\n", fetched, len(missing))
	return ctx.Err()
}
