package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, "default", config.Namespace)
	assert.Equal(t, 0.85, config.FuzzyThreshold)
	assert.Equal(t, float32(0.85), config.VectorThreshold)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.RetryBaseDelay)
	assert.Equal(t, 10, config.MaxConsecutiveFailures)
	assert.Equal(t, 20, config.RecentFailureLimit)
	assert.False(t, config.DryRun)
	assert.False(t, config.Refresh)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
namespace: docs
fuzzy_threshold: 0.9
max_retries: 5
retry_base_delay: 250ms
co_mentions: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "docs", config.Namespace)
	assert.Equal(t, 0.9, config.FuzzyThreshold)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, config.RetryBaseDelay)
	assert.True(t, config.CoMentions)

	// Absent fields keep their defaults
	assert.Equal(t, float32(0.85), config.VectorThreshold)
	assert.Equal(t, 10, config.MaxConsecutiveFailures)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty namespace", func(c *Config) { c.Namespace = "" }},
		{"fuzzy threshold above one", func(c *Config) { c.FuzzyThreshold = 1.5 }},
		{"negative vector threshold", func(c *Config) { c.VectorThreshold = -0.1 }},
		{"zero max retries", func(c *Config) { c.MaxRetries = 0 }},
		{"negative base delay", func(c *Config) { c.RetryBaseDelay = -time.Second }},
		{"zero failure ceiling", func(c *Config) { c.MaxConsecutiveFailures = 0 }},
		{"min confidence above one", func(c *Config) { c.MinConfidence = 2 }},
		{"negative max documents", func(c *Config) { c.MaxDocuments = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}
