package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fabel/internal/gen"
	"fabel/internal/outline"
)

// outlineCmd authors the narrative outline
var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Author (or finish) the narrative outline",
	Long: `Generates the chapter-by-chapter narrative outline the pipeline walks
through, in resumable chunks. Each chunk request carries the full outline so
far, keeping late chapters consistent with early ones. A partial outline file
is extended, never regenerated.`,
	RunE: runOutline,
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := gen.NewGeminiClient(ctx, cfg.APIKey, cfg.GenerationTimeout(), logger)
	if err != nil {
		return err
	}

	builder := outline.NewBuilder(client, cfg.Outline.Model, cfg.Outline.Location, logger)
	chapters, err := builder.Build(ctx, cfg.Paths.OutlineFile, cfg.Outline.TargetChapters, cfg.Outline.ChunkSize)
	if len(chapters) > 0 {
		fmt.Printf("Outline now holds %d of %d chapter(s) at %s\n",
			len(chapters), cfg.Outline.TargetChapters, cfg.Paths.OutlineFile)
	}
	return err
}
