package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"fabel/internal/gen"
)

// Builder authors the narrative outline with the text-generation service in
// resumable chunks. Each chunk request carries the full history generated so
// far, so late chapters stay consistent with early ones; progress is
// persisted after every chunk so an interrupted run picks up where it left
// off.
type Builder struct {
	text     gen.TextGenerator
	model    string
	location string
	logger   *zap.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(text gen.TextGenerator, model, location string, logger *zap.Logger) *Builder {
	return &Builder{text: text, model: model, location: location, logger: logger}
}

// Build extends the outline at path until it holds target chapters,
// generating chunkSize chapters per request. An existing partial outline is
// resumed, not regenerated.
func (b *Builder) Build(ctx context.Context, path string, target, chunkSize int) ([]Chapter, error) {
	chapters, err := loadPartial(path)
	if err != nil {
		return nil, err
	}

	for len(chapters) < target {
		if err := ctx.Err(); err != nil {
			return chapters, err
		}

		startCh := len(chapters) + 1
		endCh := startCh + chunkSize - 1
		if endCh > target {
			endCh = target
		}

		b.logger.Info("authoring outline chunk",
			zap.Int("from_chapter", startCh),
			zap.Int("to_chapter", endCh))

		prompt := b.chunkPrompt(chapters, startCh, endCh)
		raw, err := b.text.GenerateJSON(ctx, b.model, prompt, nil)
		if err != nil {
			return chapters, fmt.Errorf("outline chunk %d-%d failed: %w", startCh, endCh, err)
		}

		payload := gen.CleanResponse(raw)
		if payload == "" {
			return chapters, fmt.Errorf("outline chunk %d-%d returned no JSON", startCh, endCh)
		}
		var chunk []Chapter
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return chapters, fmt.Errorf("outline chunk %d-%d is not valid JSON: %w", startCh, endCh, err)
		}
		if len(chunk) == 0 {
			return chapters, fmt.Errorf("outline chunk %d-%d is empty", startCh, endCh)
		}

		chapters = append(chapters, chunk...)
		if err := persist(path, chapters); err != nil {
			return chapters, err
		}
		b.logger.Info("outline progress saved",
			zap.Int("chapters", len(chapters)),
			zap.Int("target", target))
	}

	return chapters, nil
}

// chunkPrompt builds the first-chunk master prompt or a continuation prompt
// carrying the full history.
func (b *Builder) chunkPrompt(history []Chapter, startCh, endCh int) string {
	var sb strings.Builder

	if len(history) == 0 {
		fmt.Fprintf(&sb, "Create the opening of a Master Narrative Outline for a surrealist story set in %s.\n", b.location)
		sb.WriteString("The story follows {{HERO}} on their 'Worst Day Ever' which lasts for millennia.\n")
		sb.WriteString("Start mundane (cafes, bakeries, pubs) and let reality warp slowly as chapters progress.\n\n")
	} else {
		fmt.Fprintf(&sb, "You are the Master Architect of a surrealist saga set in %s.\n\n", b.location)
		sb.WriteString("FULL NARRATIVE HISTORY SO FAR:\n")
		full, _ := json.Marshal(history)
		sb.Write(full)
		sb.WriteString("\n\nStay internally consistent with the history: locations, items and characters may reappear.\n")
		sb.WriteString("The city should be more broken and Kafkaesque than in earlier chapters.\n\n")
	}

	fmt.Fprintf(&sb, "Generate chapters %d to %d. Keep vibe and cliffhanger to one sentence each.\n", startCh, endCh)
	sb.WriteString(`Return ONLY a JSON list of objects:
[{"chapter": ` + fmt.Sprint(startCh) + `, "location": "...", "vibe": "...", "cliffhanger": "..."}, ...]
`)

	return sb.String()
}

// loadPartial reads an existing outline, tolerating a missing file.
func loadPartial(path string) ([]Chapter, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read outline %s: %w", path, err)
	}
	var chapters []Chapter
	if err := json.Unmarshal(data, &chapters); err != nil {
		return nil, fmt.Errorf("failed to parse outline %s: %w", path, err)
	}
	return chapters, nil
}

// persist writes the outline atomically via temp file + rename.
func persist(path string, chapters []Chapter) error {
	data, err := json.MarshalIndent(chapters, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outline: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp outline: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp outline: %w", err)
	}
	return nil
}
