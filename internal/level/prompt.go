package level

import (
	"fmt"
	"strings"

	"fabel/internal/outline"
)

// heroPlaceholder is substituted client-side with the learner's chosen name.
const heroPlaceholder = "{{HERO}}"

// BuildSharedContext assembles the reusable system context: the teaching
// persona, the full narrative outline, and the anchor vocabulary. This is
// what gets uploaded to the context cache (or re-sent inline per request
// when caching is unavailable).
func BuildSharedContext(anchorWords []string, chapters []outline.Chapter) string {
	var sb strings.Builder

	sb.WriteString("You are an expert German teacher writing a branching A1-level saga.\n")
	sb.WriteString("The story follows ")
	sb.WriteString(heroPlaceholder)
	sb.WriteString(" on their 'Worst Day Ever'. Every level offers two choices and both\n")
	sb.WriteString("must converge toward the destination chapter given per request.\n\n")

	sb.WriteString("ANCHOR VOCABULARY (weave these high-frequency words in wherever natural):\n")
	sb.WriteString(strings.Join(anchorWords, ", "))
	sb.WriteString("\n\nNARRATIVE OUTLINE:\n")
	for _, ch := range chapters {
		fmt.Fprintf(&sb, "Chapter %d | %s | %s | %s\n", ch.Chapter, ch.Location, ch.Vibe, ch.Cliffhanger)
	}

	return sb.String()
}

// BuildLevelPrompt assembles the per-level request: vocabulary to introduce,
// chapter context, and the strict output schema.
func BuildLevelPrompt(levelNumber int, targetWords, legacyWords []string, current, next outline.Chapter) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write level %d of the saga.\n\n", levelNumber)
	fmt.Fprintf(&sb, "CURRENT CHAPTER: %s | %s\n", current.Location, current.Vibe)
	fmt.Fprintf(&sb, "DESTINATION: %s | the level must end on: %s\n\n", next.Location, next.Cliffhanger)

	fmt.Fprintf(&sb, "NEW WORDS (every one must appear): [%s]\n", strings.Join(targetWords, ", "))
	if len(legacyWords) > 0 {
		fmt.Fprintf(&sb, "REVIEW WORDS (reuse naturally): [%s]\n", strings.Join(legacyWords, ", "))
	}

	sb.WriteString(`
Offer two choices for ` + heroPlaceholder + `. For each choice write the scene as short A1
sentences in three parallel versions: a masculine-hero German version (er/sein,
masculine endings), a feminine-hero German version (sie/ihr, feminine endings),
and an English translation. The three arrays MUST have the same length, sentence
i translating sentence i. Also give each choice a single image prompt that keeps
the protagonist silhouette-based, first-person, or distant so it fits either gender.

Return ONLY a valid JSON object with this exact structure:
{
  "choice_a": {
    "prompt_label": "Short choice label",
    "sentences_masculine": ["..."],
    "sentences_feminine": ["..."],
    "sentences_english": ["..."],
    "image_prompt": "..."
  },
  "choice_b": { same structure }
}
`)

	return sb.String()
}
