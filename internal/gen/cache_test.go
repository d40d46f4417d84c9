package gen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCacheCreator fails for models in failFor and succeeds otherwise.
type fakeCacheCreator struct {
	failFor map[string]bool
	calls   []string
}

func (f *fakeCacheCreator) CreateCache(_ context.Context, model, _ string, _ time.Duration) (*CacheHandle, error) {
	f.calls = append(f.calls, model)
	if f.failFor[model] {
		return nil, errors.New("quota exceeded")
	}
	return &CacheHandle{Name: "cachedContents/" + model, Model: model}, nil
}

func TestEstablish_FirstModelWins(t *testing.T) {
	creator := &fakeCacheCreator{}
	mgr := NewCacheManager(creator, time.Hour, zap.NewNop())

	handle, model := mgr.Establish(context.Background(), []string{"pro", "flash"}, "ctx")

	require.NotNil(t, handle)
	assert.Equal(t, "pro", model)
	assert.Equal(t, "pro", handle.Model)
	assert.Equal(t, []string{"pro"}, creator.calls)
}

func TestEstablish_FallsThroughToNextCandidate(t *testing.T) {
	creator := &fakeCacheCreator{failFor: map[string]bool{"pro": true}}
	mgr := NewCacheManager(creator, time.Hour, zap.NewNop())

	handle, model := mgr.Establish(context.Background(), []string{"pro", "flash"}, "ctx")

	require.NotNil(t, handle)
	assert.Equal(t, "flash", model)
	assert.Equal(t, []string{"pro", "flash"}, creator.calls)
}

func TestEstablish_AllFailDowngradesToInline(t *testing.T) {
	creator := &fakeCacheCreator{failFor: map[string]bool{"pro": true, "flash": true}}
	mgr := NewCacheManager(creator, time.Hour, zap.NewNop())

	handle, model := mgr.Establish(context.Background(), []string{"pro", "flash"}, "ctx")

	assert.Nil(t, handle)
	assert.Equal(t, "flash", model, "fallback is the last candidate")
	assert.Equal(t, []string{"pro", "flash"}, creator.calls)
}

func TestEstablish_NoCandidates(t *testing.T) {
	mgr := NewCacheManager(&fakeCacheCreator{}, time.Hour, zap.NewNop())

	handle, model := mgr.Establish(context.Background(), nil, "ctx")
	assert.Nil(t, handle)
	assert.Empty(t, model)
}
