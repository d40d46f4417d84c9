// Package outline models the pre-authored narrative outline: an ordered
// list of chapter beats the generated levels walk through. The outline is
// finite and indexed cyclically, so long runs wrap back to the first
// chapter by design.
package outline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrEmptyOutline is returned when the outline has no chapters. This is a
// fatal configuration problem, not something the pipeline retries.
var ErrEmptyOutline = errors.New("narrative outline is empty")

// Chapter is one pre-authored narrative beat.
type Chapter struct {
	Chapter     int    `json:"chapter"`
	Location    string `json:"location"`
	Vibe        string `json:"vibe"`
	Cliffhanger string `json:"cliffhanger"`
}

// Load reads the outline JSON from disk.
func Load(path string) ([]Chapter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outline %s: %w", path, err)
	}
	var chapters []Chapter
	if err := json.Unmarshal(data, &chapters); err != nil {
		return nil, fmt.Errorf("failed to parse outline %s: %w", path, err)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyOutline, path)
	}
	return chapters, nil
}

// CurrentAndNext resolves the chapter context for a level: the beat the
// level plays out in and the beat it must converge toward. Indexing is
// modular, so level numbers beyond the outline length wrap around.
func CurrentAndNext(chapters []Chapter, level int) (current, next Chapter, err error) {
	if len(chapters) == 0 {
		return Chapter{}, Chapter{}, ErrEmptyOutline
	}
	idx := (level - 1) % len(chapters)
	if idx < 0 {
		idx += len(chapters)
	}
	nextIdx := level % len(chapters)
	if nextIdx < 0 {
		nextIdx += len(chapters)
	}
	return chapters[idx], chapters[nextIdx], nil
}
