package level

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"fabel/internal/gen"
	"fabel/internal/outline"
)

// Generator turns a vocabulary window plus narrative context into a
// validated Level via one call to the text-generation service.
type Generator struct {
	text   gen.TextGenerator
	model  string // inline-mode model; ignored when a cache handle is bound
	logger *zap.Logger
}

// NewGenerator creates a Generator. model is used when no cache handle is
// supplied to Generate.
func NewGenerator(text gen.TextGenerator, model string, logger *zap.Logger) *Generator {
	return &Generator{text: text, model: model, logger: logger}
}

// levelBody is the shape the model is asked to return; the rest of the
// Level record is filled in locally.
type levelBody struct {
	ChoiceA Branch `json:"choice_a"`
	ChoiceB Branch `json:"choice_b"`
}

// Generate produces the Level for levelNumber or an error classified as
// ErrTransient (transport/parse) or ErrSchemaViolation (invariant breach).
// It never returns a partial Level, and it never retries; retry policy
// belongs to the driver.
func (g *Generator) Generate(ctx context.Context, levelNumber int, targetWords, legacyWords []string,
	current, next outline.Chapter, cache *gen.CacheHandle) (*Level, error) {

	prompt := BuildLevelPrompt(levelNumber, targetWords, legacyWords, current, next)

	raw, err := g.text.GenerateJSON(ctx, g.model, prompt, cache)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	payload := gen.CleanResponse(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: response contains no JSON", ErrTransient)
	}

	var body levelBody
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return nil, fmt.Errorf("%w: response is not valid JSON: %v", ErrTransient, err)
	}

	lvl := &Level{
		LevelNumber: levelNumber,
		TargetWords: targetWords,
		LegacyWords: legacyWords,
		ChoiceA:     body.ChoiceA,
		ChoiceB:     body.ChoiceB,
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}

	g.logger.Info("level generated",
		zap.Int("level", levelNumber),
		zap.Int("target_words", len(targetWords)),
		zap.Int("legacy_words", len(legacyWords)),
		zap.Int("beats_a", len(lvl.ChoiceA.SentencesMasculine)),
		zap.Int("beats_b", len(lvl.ChoiceB.SentencesMasculine)))
	return lvl, nil
}
