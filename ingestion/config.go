package ingestion

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of an ingest run. It is immutable once the
// pipeline is constructed.
type Config struct {
	// Namespace is the logical graph all writes land in.
	Namespace string `yaml:"namespace"`

	// FuzzyThreshold is the minimum name-similarity score for the fuzzy
	// dedup stage to mark an entity as a duplicate.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	// VectorThreshold is the minimum cosine similarity for the vector dedup
	// stage to mark an entity as a duplicate.
	VectorThreshold float32 `yaml:"vector_threshold"`

	// MaxRetries is the total attempt budget per document for the
	// extraction call, including the first attempt.
	MaxRetries int `yaml:"max_retries"`

	// RetryBaseDelay is the backoff delay before the second attempt;
	// subsequent delays double.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// MaxConsecutiveFailures aborts the run when this many documents fail
	// extraction back to back.
	MaxConsecutiveFailures int `yaml:"max_consecutive_failures"`

	// MinConfidence drops extracted entities below this confidence before
	// the hook chain runs.
	MinConfidence float64 `yaml:"min_confidence"`

	// DryRun runs extraction and the hook chain but writes nothing.
	DryRun bool `yaml:"dry_run"`

	// Refresh disables the idempotency gate so unchanged documents are
	// re-processed.
	Refresh bool `yaml:"refresh"`

	// MaxDocuments caps how many discovered documents one run processes.
	// Zero means no cap.
	MaxDocuments int `yaml:"max_documents"`

	// RecentFailureLimit bounds the per-run recent-failure list.
	RecentFailureLimit int `yaml:"recent_failure_limit"`

	// CoMentions adds implicit "mentioned_with" edges between entities
	// extracted from the same document.
	CoMentions bool `yaml:"co_mentions"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "default",
		FuzzyThreshold:         0.85,
		VectorThreshold:        0.85,
		MaxRetries:             3,
		RetryBaseDelay:         500 * time.Millisecond,
		MaxConsecutiveFailures: 10,
		MinConfidence:          0.0,
		RecentFailureLimit:     20,
	}
}

// LoadConfig reads a YAML config file over the defaults. Fields absent from
// the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("%w: namespace is required", ErrInvalidConfig)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("%w: fuzzy_threshold must be in [0, 1]", ErrInvalidConfig)
	}
	if c.VectorThreshold < 0 || c.VectorThreshold > 1 {
		return fmt.Errorf("%w: vector_threshold must be in [0, 1]", ErrInvalidConfig)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: max_retries must be at least 1", ErrInvalidConfig)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("%w: retry_base_delay must not be negative", ErrInvalidConfig)
	}
	if c.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("%w: max_consecutive_failures must be at least 1", ErrInvalidConfig)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be in [0, 1]", ErrInvalidConfig)
	}
	if c.MaxDocuments < 0 {
		return fmt.Errorf("%w: max_documents must not be negative", ErrInvalidConfig)
	}
	if c.RecentFailureLimit < 0 {
		return fmt.Errorf("%w: recent_failure_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}
