package outline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fabel/internal/gen"
)

// chunkText fabricates one outline chunk per call, sized from the prompt's
// requested range. failOnCall > 0 makes that call fail.
type chunkText struct {
	calls      int
	failOnCall int
	chunkSize  int
	nextStart  int
}

func (c *chunkText) GenerateJSON(_ context.Context, _, _ string, _ *gen.CacheHandle) (string, error) {
	c.calls++
	if c.calls == c.failOnCall {
		return "", errors.New("quota exceeded")
	}
	chunk := make([]Chapter, c.chunkSize)
	for i := range chunk {
		n := c.nextStart + i
		chunk[i] = Chapter{Chapter: n, Location: fmt.Sprintf("loc-%d", n)}
	}
	c.nextStart += c.chunkSize
	data, _ := json.Marshal(chunk)
	return string(data), nil
}

func TestBuild_AuthorsInChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	text := &chunkText{chunkSize: 5, nextStart: 1}
	b := NewBuilder(text, "m", "Leipzig, Germany", zap.NewNop())

	chapters, err := b.Build(context.Background(), path, 15, 5)
	require.NoError(t, err)

	assert.Len(t, chapters, 15)
	assert.Equal(t, 3, text.calls)

	// Persisted state matches the returned outline.
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, chapters, loaded)
}

func TestBuild_ResumesFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	existing := []Chapter{{Chapter: 1, Location: "already-there"}}
	data, _ := json.Marshal(existing)
	require.NoError(t, os.WriteFile(path, data, 0644))

	text := &chunkText{chunkSize: 2, nextStart: 2}
	b := NewBuilder(text, "m", "Leipzig, Germany", zap.NewNop())

	chapters, err := b.Build(context.Background(), path, 3, 2)
	require.NoError(t, err)

	assert.Len(t, chapters, 3)
	assert.Equal(t, "already-there", chapters[0].Location)
	assert.Equal(t, 1, text.calls)
}

func TestBuild_FailureKeepsProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	text := &chunkText{chunkSize: 5, nextStart: 1, failOnCall: 2}
	b := NewBuilder(text, "m", "Leipzig, Germany", zap.NewNop())

	chapters, err := b.Build(context.Background(), path, 15, 5)
	require.Error(t, err)
	assert.Len(t, chapters, 5)

	// The first chunk survived on disk; a rerun would resume from it.
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 5)
}

func TestBuild_AlreadyComplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	existing := []Chapter{{Chapter: 1}, {Chapter: 2}}
	data, _ := json.Marshal(existing)
	require.NoError(t, os.WriteFile(path, data, 0644))

	text := &chunkText{chunkSize: 2}
	b := NewBuilder(text, "m", "Leipzig, Germany", zap.NewNop())

	chapters, err := b.Build(context.Background(), path, 2, 2)
	require.NoError(t, err)
	assert.Len(t, chapters, 2)
	assert.Zero(t, text.calls, "no generation needed")
}
