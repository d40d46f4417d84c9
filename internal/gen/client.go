// Package gen wraps the Gemini API family behind small interfaces: text
// generation in JSON mode, server-side context caching, and image
// generation. The pipeline depends only on these interfaces; the SDK-backed
// client lives in gemini.go.
package gen

import (
	"context"
	"time"
)

// CacheHandle is an opaque reference to a server-side cached context.
// A nil handle is a valid state meaning inline-context mode: the shared
// context is re-sent with every request instead.
type CacheHandle struct {
	Name  string // server-side resource name
	Model string // model the cache is bound to
}

// TextGenerator produces structured (JSON) text. When cache is non-nil the
// request binds to the cached context and must use the cache's model.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, model, prompt string, cache *CacheHandle) (string, error)
}

// CacheCreator establishes a server-side cached context holding the system
// instruction text for the given time-to-live.
type CacheCreator interface {
	CreateCache(ctx context.Context, model, systemContext string, ttl time.Duration) (*CacheHandle, error)
}

// ImageGenerator produces a single image for a prompt and returns its raw
// bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, model, prompt, aspectRatio string) ([]byte, error)
}
