package types

import (
	"fmt"
	"strings"
)

// UserStory represents an Azure DevOps User Story work item.
type UserStory struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria string   `json:"acceptance_criteria"`
	Priority           int      `json:"priority"`
	Tags               []string `json:"tags,omitempty"`
	State              string   `json:"state,omitempty"`
}

// TestStep is a single action + expected-result pair inside a test case.
// Step order is semantically meaningful and must be preserved.
type TestStep struct {
	Action         string `json:"action"`
	ExpectedResult string `json:"expected_result"`
}

// Category classifies the scenario a test case exercises.
//
// Upstream generation emits these as free text; they are parsed into
// this closed set and unrecognized values are rejected rather than
// silently coerced.
type Category string

const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
	CategoryEdge     Category = "edge"
)

// IsValid checks if the category value is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryPositive, CategoryNegative, CategoryEdge:
		return true
	}
	return false
}

// ParseCategory converts a free-text category tag into a Category.
// It accepts any casing and surrounding whitespace, and fails on
// anything outside the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unrecognized category %q (want positive, negative, or edge)", s)
	}
	return c, nil
}

// GeneratedTestCase is a BDD test case produced by the AI generator
// for one coverage gap. It is transient: it exists only within a single
// reconciliation run and is never persisted by the engine.
type GeneratedTestCase struct {
	Title    string     `json:"title"`
	Given    string     `json:"given"`
	When     string     `json:"when"`
	Then     string     `json:"then"`
	Steps    []TestStep `json:"steps,omitempty"`
	Priority int        `json:"priority"`
	Tags     []string   `json:"tags,omitempty"`
	Category Category   `json:"category"`

	// SourceCriterion is the acceptance criterion this case was
	// generated to cover (raw text).
	SourceCriterion string `json:"source_criterion,omitempty"`
}

// Validate checks the structural shape of a generated test case.
// Content quality is the generator's problem; the reconciliation engine
// only requires a title and at least one step of behavior.
func (tc *GeneratedTestCase) Validate() error {
	if strings.TrimSpace(tc.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(tc.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(tc.Title))
	}
	hasGWT := strings.TrimSpace(tc.Given) != "" ||
		strings.TrimSpace(tc.When) != "" ||
		strings.TrimSpace(tc.Then) != ""
	if !hasGWT && len(tc.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	if tc.Priority < 1 || tc.Priority > 4 {
		return fmt.Errorf("priority must be between 1 and 4 (got %d)", tc.Priority)
	}
	if !tc.Category.IsValid() {
		return fmt.Errorf("invalid category: %q", tc.Category)
	}
	return nil
}

// IsCritical reports whether the case is marked as core/critical path.
// Priority 1 means business-critical in the generator's contract.
func (tc *GeneratedTestCase) IsCritical() bool {
	return tc.Priority == 1
}

// OrderedSteps returns the concrete test steps, synthesizing them from
// the Given/When/Then triple when the generator supplied none.
func (tc *GeneratedTestCase) OrderedSteps() []TestStep {
	if len(tc.Steps) > 0 {
		return tc.Steps
	}
	return []TestStep{
		{Action: "Given " + tc.Given, ExpectedResult: "Precondition met"},
		{Action: "When " + tc.When, ExpectedResult: "Action performed"},
		{Action: "Then " + tc.Then, ExpectedResult: tc.Then},
	}
}

// ExistingTestCase is a Test Case work item already present in the
// tracker, linked to the story. The tracker owns it; this system only
// reads it and proposes mutations.
type ExistingTestCase struct {
	ID       int        `json:"id"`
	Title    string     `json:"title"`
	Steps    []TestStep `json:"steps,omitempty"`
	Priority int        `json:"priority"`
	Tags     []string   `json:"tags,omitempty"`
	Revision int        `json:"revision"`

	// Category is the scenario tag if the item carries one, empty
	// otherwise.
	Category Category `json:"category,omitempty"`

	// Suites are the names of the suites the item currently belongs to.
	Suites []string `json:"suites,omitempty"`
}

// AcceptanceCriterion is an identifier-less text unit extracted from a
// story's acceptance criteria. Immutable once extracted.
type AcceptanceCriterion struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// SyncResult is the summary returned after a full sync cycle.
type SyncResult struct {
	RunID        string         `json:"run_id"`
	StoryID      int            `json:"story_id"`
	CreatedIDs   []int          `json:"created_ids,omitempty"`
	UpdatedIDs   []int          `json:"updated_ids,omitempty"`
	SkippedCount int            `json:"skipped_count"`
	FolderMap    map[string]int `json:"folder_map,omitempty"`
}
