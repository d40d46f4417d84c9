package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10, cfg.Vocabulary.BatchSize)
	assert.Equal(t, 100, cfg.Vocabulary.AnchorPoolSize)
	assert.Equal(t, 5, cfg.Vocabulary.LegacyPoolSize)
	assert.Equal(t, 3, cfg.Pipeline.MaxAttempts)
	assert.NotEmpty(t, cfg.Cache.Models)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Vocabulary, cfg.Vocabulary)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	path := filepath.Join(t.TempDir(), "fabel.yaml")
	data := []byte("vocabulary:\n  batch_size: 25\npipeline:\n  delay_seconds: 0\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Vocabulary.BatchSize)
	assert.Equal(t, time.Duration(0), cfg.InterLevelDelay())
	// Untouched sections keep defaults.
	assert.Equal(t, 5, cfg.Vocabulary.LegacyPoolSize)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fabel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vocabulary: [oops"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides_APIKey(t *testing.T) {
	t.Run("GEMINI_API_KEY wins over GOOGLE_API_KEY", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gem")
		t.Setenv("GOOGLE_API_KEY", "goo")

		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, "gem", cfg.APIKey)
	})

	t.Run("GOOGLE_API_KEY used when GEMINI unset", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "goo")

		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, "goo", cfg.APIKey)
	})

	t.Run("RequireAPIKey fails without credential", func(t *testing.T) {
		cfg := Default()
		cfg.APIKey = ""
		assert.Error(t, cfg.RequireAPIKey())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.Vocabulary.BatchSize = 0 }},
		{"negative legacy pool", func(c *Config) { c.Vocabulary.LegacyPoolSize = -1 }},
		{"zero max attempts", func(c *Config) { c.Pipeline.MaxAttempts = 0 }},
		{"no cache models", func(c *Config) { c.Cache.Models = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
