package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabel/internal/manifest"
	"fabel/internal/media"
	"fabel/internal/vocab"
)

// statusCmd summarizes pipeline progress
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pipeline progress",
	Long:  `Prints committed levels, the resume point, corpus coverage, and missing media. Read-only; needs no credentials.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := manifest.NewStore(cfg.Paths.ManifestFile, logger)
	m, err := store.Load()
	if err != nil {
		return err
	}

	next := store.NextLevel(m, 0)
	fmt.Printf("Committed levels: %d\n", len(m))
	fmt.Printf("Next level:       %d\n", next)

	if corpus, err := vocab.LoadCorpus(cfg.Paths.VocabFile); err == nil {
		used := (next - 1) * cfg.Vocabulary.BatchSize
		if used > len(corpus) {
			used = len(corpus)
		}
		fmt.Printf("Corpus coverage:  %d / %d words\n", used, len(corpus))
	}

	fetcher := media.NewFetcher(nil, cfg.Paths.MediaDir, cfg.Media.Model,
		cfg.Media.AspectRatio, cfg.Media.TargetSize, cfg.Media.JPEGQuality, logger)
	missing := fetcher.Missing(m)
	fmt.Printf("Missing images:   %d\n", len(missing))
	for _, name := range missing {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}
