package gen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient implements TextGenerator, CacheCreator and ImageGenerator on
// top of the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	logger  *zap.Logger
	timeout time.Duration
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey string, timeout time.Duration, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// GenerateJSON sends one prompt in JSON mode and returns the raw response
// text. A non-nil cache binds the request to the cached shared context; the
// request then uses the cache's bound model regardless of the model argument.
func (c *GeminiClient) GenerateJSON(ctx context.Context, model, prompt string, cache *CacheHandle) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if cache != nil {
		cfg.CachedContent = cache.Name
		model = cache.Model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content failed (model %s): %w", model, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generate content returned no text (model %s)", model)
	}

	c.logger.Debug("text generation complete",
		zap.String("model", model),
		zap.Bool("cached_context", cache != nil),
		zap.Int("response_chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

// CreateCache establishes a server-side cached context holding the system
// instruction text.
func (c *GeminiClient) CreateCache(ctx context.Context, model, systemContext string, ttl time.Duration) (*CacheHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cached, err := c.client.Caches.Create(ctx, model, &genai.CreateCachedContentConfig{
		DisplayName:       fmt.Sprintf("fabel-%s", uuid.NewString()),
		SystemInstruction: genai.NewContentFromText(systemContext, genai.RoleUser),
		TTL:               ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("cache creation failed (model %s): %w", model, err)
	}

	c.logger.Debug("cached context created",
		zap.String("model", model),
		zap.String("cache_name", cached.Name),
		zap.Duration("ttl", ttl))
	return &CacheHandle{Name: cached.Name, Model: model}, nil
}

// GenerateImage requests a single image and returns its raw bytes.
func (c *GeminiClient) GenerateImage(ctx context.Context, model, prompt, aspectRatio string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed (model %s): %w", model, err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("image generation returned no images (model %s)", model)
	}

	data := resp.GeneratedImages[0].Image.ImageBytes
	c.logger.Debug("image generation complete",
		zap.String("model", model),
		zap.Int("size_bytes", len(data)))
	return data, nil
}
