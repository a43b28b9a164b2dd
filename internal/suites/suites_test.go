package suites

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

func TestAssign(t *testing.T) {
	names := DefaultNames()

	tests := []struct {
		name        string
		category    types.Category
		critical    bool
		want        []string
		expectError bool
	}{
		{
			name:     "critical positive is Smoke only, not also Sanity",
			category: types.CategoryPositive,
			critical: true,
			want:     []string{Umbrella, Smoke},
		},
		{
			name:     "non-critical positive is Sanity",
			category: types.CategoryPositive,
			want:     []string{Umbrella, Sanity},
		},
		{
			name:     "negative is Regression",
			category: types.CategoryNegative,
			want:     []string{Umbrella, Regression},
		},
		{
			name:     "edge is Regression",
			category: types.CategoryEdge,
			want:     []string{Umbrella, Regression},
		},
		{
			name:     "critical flag does not affect negative",
			category: types.CategoryNegative,
			critical: true,
			want:     []string{Umbrella, Regression},
		},
		{
			name:        "unrecognized category fails fast",
			category:    types.Category("smoke"),
			expectError: true,
		},
		{
			name:        "empty category fails fast",
			category:    types.Category(""),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := names.Assign(tt.category, tt.critical)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for category %q, got %v", tt.category, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Assign(%q, %v) = %v, want %v", tt.category, tt.critical, got, tt.want)
			}
			if len(got) == 0 {
				t.Error("assignment must never be empty")
			}
			if got[0] != Umbrella {
				t.Errorf("umbrella suite must always be included, got %v", got)
			}
		})
	}
}

func TestAssignCaseUsesPriority(t *testing.T) {
	names := DefaultNames()
	tc := &types.GeneratedTestCase{Category: types.CategoryPositive, Priority: 1}
	got, err := names.AssignCase(tc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{Umbrella, Smoke}) {
		t.Errorf("priority-1 positive case should be Smoke, got %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suites.yaml")
	if err := os.WriteFile(path, []byte("umbrella: All Cases\nregression: Full Regression\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	names, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if names.Umbrella != "All Cases" {
		t.Errorf("umbrella override not applied: %q", names.Umbrella)
	}
	if names.Regression != "Full Regression" {
		t.Errorf("regression override not applied: %q", names.Regression)
	}
	if names.Smoke != Smoke || names.Sanity != Sanity {
		t.Errorf("unset fields must keep defaults: %+v", names)
	}
	if err := names.Validate(); err != nil {
		t.Errorf("overridden names should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	names := DefaultNames()
	if err := names.Validate(); err != nil {
		t.Errorf("default names must validate: %v", err)
	}

	names.Smoke = ""
	if err := names.Validate(); err == nil {
		t.Error("empty suite name must fail validation")
	}

	names = DefaultNames()
	names.Sanity = names.Smoke
	if err := names.Validate(); err == nil {
		t.Error("duplicate suite names must fail validation")
	}
}
