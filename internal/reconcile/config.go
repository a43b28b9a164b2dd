package reconcile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrConfiguration is returned when the engine configuration is
// invalid. It is fatal: the run aborts before any decision is computed.
var ErrConfiguration = errors.New("invalid reconciliation configuration")

// Config holds configuration for the reconciliation engine.
//
// The engine reads configuration only from this value, never from
// ambient state, so runs are pure and independently testable.
type Config struct {
	// DedupThreshold is the similarity score (0.0-1.0) at or above
	// which a proposal is treated as a duplicate of a candidate.
	// Higher values keep more proposals as new cases; lower values
	// fold more proposals into updates.
	// Default: 0.90
	DedupThreshold float64

	// CoverageThreshold is the overlap ratio (0.0-1.0) at or above
	// which an acceptance criterion counts as covered by existing test
	// content. Distinct from DedupThreshold: coverage is a containment
	// question, dedup is a whole-case similarity question.
	// Default: 0.70
	CoverageThreshold float64

	// WithinBatchDedup enables deduplication among the proposals of a
	// single batch. When true, a proposal similar to an earlier Create
	// in the same run is skipped instead of filed twice.
	// Default: true
	WithinBatchDedup bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		DedupThreshold:    0.90,
		CoverageThreshold: 0.70,
		WithinBatchDedup:  true,
	}
}

// Validate checks if the configuration has valid values. All errors
// wrap ErrConfiguration.
func (c Config) Validate() error {
	if c.DedupThreshold < 0.0 || c.DedupThreshold > 1.0 {
		return fmt.Errorf("%w: dedup_threshold must be between 0.0 and 1.0 (got %.2f)",
			ErrConfiguration, c.DedupThreshold)
	}
	if c.CoverageThreshold < 0.0 || c.CoverageThreshold > 1.0 {
		return fmt.Errorf("%w: coverage_threshold must be between 0.0 and 1.0 (got %.2f)",
			ErrConfiguration, c.CoverageThreshold)
	}
	return nil
}

// String returns a human-readable representation of the config.
func (c Config) String() string {
	return fmt.Sprintf("Config{DedupThreshold: %.2f, CoverageThreshold: %.2f, WithinBatch: %t}",
		c.DedupThreshold, c.CoverageThreshold, c.WithinBatchDedup)
}

// ConfigFromEnv creates a Config from environment variables, falling
// back to defaults.
//
// Environment variables:
//   - TSP_DEDUP_THRESHOLD: similarity score to treat as duplicate (default: 0.90)
//   - TSP_COVERAGE_THRESHOLD: overlap ratio to treat a criterion as covered (default: 0.70)
//   - TSP_WITHIN_BATCH_DEDUP: dedup within the proposal batch (default: true)
//
// Returns an error if any variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("TSP_DEDUP_THRESHOLD", &cfg.DedupThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("TSP_COVERAGE_THRESHOLD", &cfg.CoverageThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("TSP_WITHIN_BATCH_DEDUP", &cfg.WithinBatchDedup); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid value for %s: %v", ErrConfiguration, key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: invalid value for %s: %v", ErrConfiguration, key, err)
	}
	*dest = parsed
	return nil
}
