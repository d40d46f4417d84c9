package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fabel/internal/gen"
)

// scriptedText replays queued responses (or errors) in order and records
// every call. When the queue empties it repeats the final entry.
type scriptedText struct {
	script  []textTurn
	calls   int
	models  []string
	caches  []*gen.CacheHandle
	prompts []string
}

type textTurn struct {
	response string
	err      error
}

func (s *scriptedText) GenerateJSON(_ context.Context, model, prompt string, cache *gen.CacheHandle) (string, error) {
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	s.models = append(s.models, model)
	s.caches = append(s.caches, cache)
	s.prompts = append(s.prompts, prompt)

	turn := s.script[idx]
	return turn.response, turn.err
}

// flakyCaches fails the first failures attempts, then succeeds.
type flakyCaches struct {
	failures int
	calls    int
}

func (f *flakyCaches) CreateCache(_ context.Context, model, _ string, _ time.Duration) (*gen.CacheHandle, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("cache not supported for model")
	}
	return &gen.CacheHandle{Name: "cachedContents/" + model, Model: model}, nil
}

// stubImages returns a fixed PNG for every prompt.
type stubImages struct {
	data  []byte
	calls int
}

func (s *stubImages) GenerateImage(_ context.Context, _, _, _ string) ([]byte, error) {
	s.calls++
	return s.data, nil
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 20))))
	return buf.Bytes()
}

// validLevelJSON is a minimal schema-correct generation response.
const validLevelJSON = `{
	"choice_a": {
		"prompt_label": "Links gehen",
		"sentences_masculine": ["Er geht nach links."],
		"sentences_feminine": ["Sie geht nach links."],
		"sentences_english": ["They go left."],
		"image_prompt": "A silhouetted figure turning left"
	},
	"choice_b": {
		"prompt_label": "Rechts gehen",
		"sentences_masculine": ["Er geht nach rechts."],
		"sentences_feminine": ["Sie geht nach rechts."],
		"sentences_english": ["They go right."],
		"image_prompt": "A silhouetted figure turning right"
	}
}`

// mismatchedLevelJSON violates the parallel-array contract.
const mismatchedLevelJSON = `{
	"choice_a": {
		"prompt_label": "Links gehen",
		"sentences_masculine": ["Er geht.", "Er lacht."],
		"sentences_feminine": ["Sie geht."],
		"sentences_english": ["They go.", "They laugh."],
		"image_prompt": "p"
	},
	"choice_b": {
		"prompt_label": "Rechts gehen",
		"sentences_masculine": ["Er geht."],
		"sentences_feminine": ["Sie geht."],
		"sentences_english": ["They go."],
		"image_prompt": "p"
	}
}`
