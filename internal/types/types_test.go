package types

import (
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Category
		expectError bool
	}{
		{name: "positive", input: "positive", want: CategoryPositive},
		{name: "mixed case", input: "Negative", want: CategoryNegative},
		{name: "whitespace", input: "  Edge  ", want: CategoryEdge},
		{name: "upper case", input: "POSITIVE", want: CategoryPositive},
		{name: "unrecognized", input: "happy-path", expectError: true},
		{name: "empty", input: "", expectError: true},
		{name: "legacy suite name", input: "Regression", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("ParseCategory(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGeneratedTestCaseValidate(t *testing.T) {
	valid := func() GeneratedTestCase {
		return GeneratedTestCase{
			Title:    "Verify login with valid credentials",
			Given:    "a registered user on the login page",
			When:     "they submit valid email and password",
			Then:     "they are redirected to the dashboard",
			Priority: 2,
			Category: CategoryPositive,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*GeneratedTestCase)
		expectError string
	}{
		{name: "valid", mutate: func(tc *GeneratedTestCase) {}},
		{
			name:        "empty title",
			mutate:      func(tc *GeneratedTestCase) { tc.Title = "  " },
			expectError: "title is required",
		},
		{
			name:        "oversized title",
			mutate:      func(tc *GeneratedTestCase) { tc.Title = strings.Repeat("x", 501) },
			expectError: "500 characters or less",
		},
		{
			name: "no steps at all",
			mutate: func(tc *GeneratedTestCase) {
				tc.Given, tc.When, tc.Then = "", "", ""
				tc.Steps = nil
			},
			expectError: "at least one step",
		},
		{
			name: "steps without GWT is fine",
			mutate: func(tc *GeneratedTestCase) {
				tc.Given, tc.When, tc.Then = "", "", ""
				tc.Steps = []TestStep{{Action: "Open login page", ExpectedResult: "Page loads"}}
			},
		},
		{
			name:        "priority out of range",
			mutate:      func(tc *GeneratedTestCase) { tc.Priority = 0 },
			expectError: "priority must be between 1 and 4",
		},
		{
			name:        "invalid category",
			mutate:      func(tc *GeneratedTestCase) { tc.Category = "smoke" },
			expectError: "invalid category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := valid()
			tt.mutate(&tc)
			err := tc.Validate()
			if tt.expectError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.expectError)
			}
			if !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.expectError)
			}
		})
	}
}

func TestOrderedStepsSynthesizesFromGWT(t *testing.T) {
	tc := GeneratedTestCase{
		Title: "Verify logout",
		Given: "a logged-in user",
		When:  "they click logout",
		Then:  "the session ends",
	}
	steps := tc.OrderedSteps()
	if len(steps) != 3 {
		t.Fatalf("expected 3 synthesized steps, got %d", len(steps))
	}
	if steps[0].Action != "Given a logged-in user" {
		t.Errorf("unexpected first step action: %q", steps[0].Action)
	}
	if steps[2].ExpectedResult != "the session ends" {
		t.Errorf("unexpected final expected result: %q", steps[2].ExpectedResult)
	}

	tc.Steps = []TestStep{{Action: "explicit", ExpectedResult: "kept"}}
	steps = tc.OrderedSteps()
	if len(steps) != 1 || steps[0].Action != "explicit" {
		t.Errorf("explicit steps should win over synthesized GWT, got %+v", steps)
	}
}

func TestIsCritical(t *testing.T) {
	tc := GeneratedTestCase{Priority: 1}
	if !tc.IsCritical() {
		t.Error("priority 1 should be critical")
	}
	tc.Priority = 2
	if tc.IsCritical() {
		t.Error("priority 2 should not be critical")
	}
}
