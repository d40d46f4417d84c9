// Package level defines the generated content unit (a two-branch
// micro-story level) and the generator that produces it from the
// text-generation service.
package level

import (
	"errors"
	"fmt"
)

// ErrSchemaViolation marks a response that parsed but breaks a structural
// invariant (missing branch, mismatched sentence arrays). The level is
// rejected whole; no partial Level is ever committed.
var ErrSchemaViolation = errors.New("generated level violates schema")

// ErrTransient marks a transport or parse failure. Retry is the caller's
// decision, not this package's.
var ErrTransient = errors.New("transient generation failure")

// Branch is one of the two narrative choices in a level. The three sentence
// sequences are parallel: index i in each is the same beat in the
// masculine-hero German variant, the feminine-hero variant, and English.
type Branch struct {
	PromptLabel        string   `json:"prompt_label"`
	SentencesMasculine []string `json:"sentences_masculine"`
	SentencesFeminine  []string `json:"sentences_feminine"`
	SentencesEnglish   []string `json:"sentences_english"`
	ImagePrompt        string   `json:"image_prompt"`
}

// Level is one committed unit of generated content, tied to a contiguous
// vocabulary slice. Levels are append-only: once committed they are never
// regenerated.
type Level struct {
	LevelNumber int      `json:"level_number"`
	TargetWords []string `json:"target_words"`
	LegacyWords []string `json:"legacy_words"`
	ChoiceA     Branch   `json:"choice_a"`
	ChoiceB     Branch   `json:"choice_b"`
}

// validate enforces the branch contract before a Level can be accepted.
func (b Branch) validate(label string) error {
	if len(b.SentencesMasculine) == 0 {
		return fmt.Errorf("%w: %s has no sentences", ErrSchemaViolation, label)
	}
	if len(b.SentencesMasculine) != len(b.SentencesFeminine) ||
		len(b.SentencesMasculine) != len(b.SentencesEnglish) {
		return fmt.Errorf("%w: %s sentence arrays differ in length (m=%d f=%d en=%d)",
			ErrSchemaViolation, label,
			len(b.SentencesMasculine), len(b.SentencesFeminine), len(b.SentencesEnglish))
	}
	if b.ImagePrompt == "" {
		return fmt.Errorf("%w: %s is missing an image prompt", ErrSchemaViolation, label)
	}
	return nil
}

// Validate checks the structural invariants of a generated level.
func (l *Level) Validate() error {
	if err := l.ChoiceA.validate("choice_a"); err != nil {
		return err
	}
	if err := l.ChoiceB.validate("choice_b"); err != nil {
		return err
	}
	return nil
}
