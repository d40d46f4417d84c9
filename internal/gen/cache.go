package gen

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CacheManager establishes the shared-context cache with graceful
// degradation: candidate models are tried in priority order, and when every
// attempt fails the pipeline continues in inline-context mode rather than
// failing outright.
type CacheManager struct {
	creator CacheCreator
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCacheManager creates a CacheManager.
func NewCacheManager(creator CacheCreator, ttl time.Duration, logger *zap.Logger) *CacheManager {
	return &CacheManager{creator: creator, ttl: ttl, logger: logger}
}

// Establish tries each candidate model in order and returns the first
// successfully created handle. On exhaustion it returns a nil handle plus
// the fallback model (the last candidate) for inline generation. At most
// one handle is ever live; a nil handle is never an error.
func (m *CacheManager) Establish(ctx context.Context, models []string, systemContext string) (*CacheHandle, string) {
	if len(models) == 0 {
		return nil, ""
	}
	fallback := models[len(models)-1]

	for _, model := range models {
		handle, err := m.creator.CreateCache(ctx, model, systemContext, m.ttl)
		if err != nil {
			m.logger.Warn("cache creation attempt failed, trying next candidate",
				zap.String("model", model),
				zap.Error(err))
			continue
		}
		m.logger.Info("shared context cached",
			zap.String("model", model),
			zap.String("cache_name", handle.Name))
		return handle, model
	}

	m.logger.Warn("all cache creation attempts failed, using inline context",
		zap.String("fallback_model", fallback))
	return nil, fallback
}
