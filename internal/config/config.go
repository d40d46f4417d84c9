// Package config holds all fabel configuration.
// Settings load from an optional fabel.yaml with environment overrides;
// every tunable the pipeline consumes lives here rather than as package
// state, so components receive an explicit Config in their constructors.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all fabel configuration.
type Config struct {
	// Gemini API key. Usually supplied via GEMINI_API_KEY or GOOGLE_API_KEY.
	APIKey string `yaml:"api_key"`

	// Vocabulary windowing
	Vocabulary VocabularyConfig `yaml:"vocabulary"`

	// Text generation
	Generation GenerationConfig `yaml:"generation"`

	// Server-side context caching
	Cache CacheConfig `yaml:"cache"`

	// Image generation and post-processing
	Media MediaConfig `yaml:"media"`

	// Driver loop behavior
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Narrative outline authoring
	Outline OutlineConfig `yaml:"outline"`

	// Input/output locations
	Paths PathsConfig `yaml:"paths"`
}

// VocabularyConfig controls how the corpus is windowed into levels.
type VocabularyConfig struct {
	BatchSize      int `yaml:"batch_size"`       // new words per level
	AnchorPoolSize int `yaml:"anchor_pool_size"` // high-frequency words in the shared context
	LegacyPoolSize int `yaml:"legacy_pool_size"` // max reinforcement words sampled per level
}

// GenerationConfig configures the text-generation call.
type GenerationConfig struct {
	Model          string `yaml:"model"`           // model used when no cache is bound
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-request deadline
}

// CacheConfig configures the shared-context cache attempts.
type CacheConfig struct {
	// Models tried in priority order when creating the cached context.
	// The last entry doubles as the inline fallback model.
	Models     []string `yaml:"models"`
	TTLSeconds int      `yaml:"ttl_seconds"`
}

// MediaConfig configures image generation and the recompress step.
type MediaConfig struct {
	Model       string `yaml:"model"`
	AspectRatio string `yaml:"aspect_ratio"`
	TargetSize  int    `yaml:"target_size"` // output images are TargetSize x TargetSize
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// PipelineConfig configures the driver loop.
type PipelineConfig struct {
	MaxAttempts  int `yaml:"max_attempts"`  // generation attempts per level before skipping
	DelaySeconds int `yaml:"delay_seconds"` // courtesy pause between levels
}

// OutlineConfig configures narrative outline authoring.
type OutlineConfig struct {
	Model          string `yaml:"model"`
	Location       string `yaml:"location"`        // master setting of the saga
	TargetChapters int    `yaml:"target_chapters"` // total chapters to author
	ChunkSize      int    `yaml:"chunk_size"`      // chapters generated per request
}

// PathsConfig locates the pipeline inputs and outputs.
type PathsConfig struct {
	VocabFile    string `yaml:"vocab_file"`   // pipe-delimited corpus
	OutlineFile  string `yaml:"outline_file"` // narrative outline JSON
	ManifestFile string `yaml:"manifest_file"`
	MediaDir     string `yaml:"media_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Vocabulary: VocabularyConfig{
			BatchSize:      10,
			AnchorPoolSize: 100,
			LegacyPoolSize: 5,
		},
		Generation: GenerationConfig{
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 120,
		},
		Cache: CacheConfig{
			Models:     []string{"gemini-2.5-pro", "gemini-2.5-flash"},
			TTLSeconds: 3600,
		},
		Media: MediaConfig{
			Model:       "imagen-4.0-generate-001",
			AspectRatio: "1:1",
			TargetSize:  512,
			JPEGQuality: 75,
		},
		Pipeline: PipelineConfig{
			MaxAttempts:  3,
			DelaySeconds: 2,
		},
		Outline: OutlineConfig{
			Model:          "gemini-2.5-flash",
			Location:       "Leipzig, Germany",
			TargetChapters: 500,
			ChunkSize:      50,
		},
		Paths: PathsConfig{
			VocabFile:    "assets/vocab.csv",
			OutlineFile:  "assets/narrative_outline.json",
			ManifestFile: "assets/stories.json",
			MediaDir:     "assets/images",
		},
	}
}

// Load reads configuration from the given YAML file, falling back to
// defaults when the file is absent. A .env file in the working directory is
// honored before environment overrides apply.
func Load(path string) (*Config, error) {
	// Missing .env is fine; only explicit env vars are required.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides pulls the API key from the environment.
// Precedence: GEMINI_API_KEY > GOOGLE_API_KEY > config file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.APIKey = key
	}
}

// Validate checks invariants that would otherwise surface as confusing
// failures mid-run. The API key is checked separately by RequireAPIKey so
// read-only commands work without credentials.
func (c *Config) Validate() error {
	if c.Vocabulary.BatchSize <= 0 {
		return fmt.Errorf("vocabulary.batch_size must be positive, got %d", c.Vocabulary.BatchSize)
	}
	if c.Vocabulary.LegacyPoolSize < 0 {
		return fmt.Errorf("vocabulary.legacy_pool_size must not be negative, got %d", c.Vocabulary.LegacyPoolSize)
	}
	if c.Pipeline.MaxAttempts <= 0 {
		return fmt.Errorf("pipeline.max_attempts must be positive, got %d", c.Pipeline.MaxAttempts)
	}
	if len(c.Cache.Models) == 0 {
		return fmt.Errorf("cache.models must list at least one model")
	}
	return nil
}

// RequireAPIKey fails when no Gemini credential is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key configured; set GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	return nil
}

// GenerationTimeout returns the per-request deadline for text generation.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// CacheTTL returns the lifetime requested for the cached shared context.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// InterLevelDelay returns the courtesy pause between successful levels.
func (c *Config) InterLevelDelay() time.Duration {
	return time.Duration(c.Pipeline.DelaySeconds) * time.Second
}
