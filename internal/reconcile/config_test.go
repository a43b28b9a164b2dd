package reconcile

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DedupThreshold != 0.90 {
		t.Errorf("default dedup threshold = %v, want 0.90", cfg.DedupThreshold)
	}
	if cfg.CoverageThreshold != 0.70 {
		t.Errorf("default coverage threshold = %v, want 0.70", cfg.CoverageThreshold)
	}
	if !cfg.WithinBatchDedup {
		t.Error("within-batch dedup should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{name: "defaults valid", mutate: func(c *Config) {}},
		{name: "dedup threshold zero is valid", mutate: func(c *Config) { c.DedupThreshold = 0.0 }},
		{name: "dedup threshold one is valid", mutate: func(c *Config) { c.DedupThreshold = 1.0 }},
		{name: "dedup threshold negative", mutate: func(c *Config) { c.DedupThreshold = -0.01 }, expectError: true},
		{name: "dedup threshold above one", mutate: func(c *Config) { c.DedupThreshold = 1.01 }, expectError: true},
		{name: "coverage threshold negative", mutate: func(c *Config) { c.CoverageThreshold = -1 }, expectError: true},
		{name: "coverage threshold above one", mutate: func(c *Config) { c.CoverageThreshold = 2 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("expected ErrConfiguration, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TSP_DEDUP_THRESHOLD", "0.85")
	t.Setenv("TSP_COVERAGE_THRESHOLD", "0.60")
	t.Setenv("TSP_WITHIN_BATCH_DEDUP", "false")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.DedupThreshold != 0.85 || cfg.CoverageThreshold != 0.60 || cfg.WithinBatchDedup {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestConfigFromEnvInvalid(t *testing.T) {
	t.Setenv("TSP_DEDUP_THRESHOLD", "ninety percent")
	if _, err := ConfigFromEnv(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for unparseable value, got %v", err)
	}
}

func TestConfigFromEnvOutOfRange(t *testing.T) {
	t.Setenv("TSP_DEDUP_THRESHOLD", "1.5")
	if _, err := ConfigFromEnv(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for out-of-range threshold, got %v", err)
	}
}
