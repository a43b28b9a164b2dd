// Package suites assigns decided test cases to their canonical test
// suites (folders) under the test plan.
//
// Folder hierarchy under the plan root:
//
//	├─ Complete Test Cases   (every test case)
//	├─ Smoke                 (critical positive scenarios)
//	├─ Sanity                (non-critical positive scenarios)
//	└─ Regression            (negative and edge scenarios)
package suites

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// Canonical suite names. Umbrella is the suite every decided test case
// belongs to regardless of classification.
const (
	Umbrella   = "Complete Test Cases"
	Smoke      = "Smoke"
	Sanity     = "Sanity"
	Regression = "Regression"
)

// Names holds the configured suite names. The zero value is not
// usable; build one with DefaultNames or Load.
type Names struct {
	Umbrella   string `yaml:"umbrella"`
	Smoke      string `yaml:"smoke"`
	Sanity     string `yaml:"sanity"`
	Regression string `yaml:"regression"`
}

// DefaultNames returns the canonical suite names.
func DefaultNames() Names {
	return Names{
		Umbrella:   Umbrella,
		Smoke:      Smoke,
		Sanity:     Sanity,
		Regression: Regression,
	}
}

// Load reads suite-name overrides from a YAML file. Fields left empty
// in the file keep their canonical default.
func Load(path string) (Names, error) {
	names := DefaultNames()
	data, err := os.ReadFile(path)
	if err != nil {
		return names, fmt.Errorf("reading suite config: %w", err)
	}
	var overrides Names
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return names, fmt.Errorf("parsing suite config: %w", err)
	}
	if overrides.Umbrella != "" {
		names.Umbrella = overrides.Umbrella
	}
	if overrides.Smoke != "" {
		names.Smoke = overrides.Smoke
	}
	if overrides.Sanity != "" {
		names.Sanity = overrides.Sanity
	}
	if overrides.Regression != "" {
		names.Regression = overrides.Regression
	}
	return names, nil
}

// Validate checks the names are non-empty and distinct.
func (n Names) Validate() error {
	all := []string{n.Umbrella, n.Smoke, n.Sanity, n.Regression}
	seen := make(map[string]bool, len(all))
	for _, name := range all {
		if name == "" {
			return fmt.Errorf("suite names must be non-empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate suite name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// All returns the configured names in canonical order.
func (n Names) All() []string {
	return []string{n.Umbrella, n.Smoke, n.Sanity, n.Regression}
}

// Assign maps a scenario category to the suites the test case must
// belong to. The umbrella suite is always included. Critical positive
// cases go to Smoke (not Sanity), other positive cases go to Sanity,
// and negative and edge cases go to Regression.
//
// The mapping is total over valid categories and always non-empty; an
// unrecognized category is an error, never a silent fallback.
func (n Names) Assign(category types.Category, critical bool) ([]string, error) {
	switch category {
	case types.CategoryPositive:
		if critical {
			return []string{n.Umbrella, n.Smoke}, nil
		}
		return []string{n.Umbrella, n.Sanity}, nil
	case types.CategoryNegative, types.CategoryEdge:
		return []string{n.Umbrella, n.Regression}, nil
	default:
		return nil, fmt.Errorf("unrecognized category %q", category)
	}
}

// AssignCase classifies a generated test case.
func (n Names) AssignCase(tc *types.GeneratedTestCase) ([]string, error) {
	return n.Assign(tc.Category, tc.IsCritical())
}
