package ado

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// Work item field reference names used by the pipeline.
const (
	fieldTitle              = "System.Title"
	fieldDescription        = "System.Description"
	fieldState              = "System.State"
	fieldTags               = "System.Tags"
	fieldWorkItemType       = "System.WorkItemType"
	fieldAcceptanceCriteria = "Microsoft.VSTS.Common.AcceptanceCriteria"
	fieldPriority           = "Microsoft.VSTS.Common.Priority"
	fieldSteps              = "Microsoft.VSTS.TCM.Steps"
)

type workItem struct {
	ID        int            `json:"id"`
	Rev       int            `json:"rev"`
	Fields    map[string]any `json:"fields"`
	Relations []relation     `json:"relations"`
}

type relation struct {
	Rel string `json:"rel"`
	URL string `json:"url"`
}

type workItemList struct {
	Value []workItem `json:"value"`
}

// GetUserStory fetches a single User Story work item by ID.
func (c *Client) GetUserStory(ctx context.Context, storyID int) (*types.UserStory, error) {
	url := c.projectURL(fmt.Sprintf("/_apis/wit/workitems/%d?$expand=all&api-version=%s", storyID, apiVersion))

	var wi workItem
	if err := c.doJSON(ctx, "GET", url, "", nil, &wi); err != nil {
		return nil, fmt.Errorf("failed to fetch work item %d: %w", storyID, err)
	}

	return &types.UserStory{
		ID:                 storyID,
		Title:              fieldString(wi.Fields, fieldTitle),
		Description:        StripHTML(fieldString(wi.Fields, fieldDescription)),
		AcceptanceCriteria: StripHTML(fieldString(wi.Fields, fieldAcceptanceCriteria)),
		Priority:           fieldInt(wi.Fields, fieldPriority, 2),
		Tags:               splitTags(fieldString(wi.Fields, fieldTags)),
		State:              fieldString(wi.Fields, fieldState),
	}, nil
}

// GetLinkedTestCases returns every Test Case linked to the story via a
// hierarchy-forward relation. Linked items of other types are skipped.
func (c *Client) GetLinkedTestCases(ctx context.Context, storyID int) ([]*types.ExistingTestCase, error) {
	url := c.projectURL(fmt.Sprintf("/_apis/wit/workitems/%d?$expand=relations&api-version=%s", storyID, apiVersion))

	var wi workItem
	if err := c.doJSON(ctx, "GET", url, "", nil, &wi); err != nil {
		return nil, fmt.Errorf("failed to fetch relations for %d: %w", storyID, err)
	}

	var ids []string
	for _, rel := range wi.Relations {
		if !strings.Contains(rel.Rel, "Hierarchy-Forward") {
			continue
		}
		idx := strings.LastIndex(rel.URL, "/")
		if idx < 0 {
			continue
		}
		if _, err := strconv.Atoi(rel.URL[idx+1:]); err != nil {
			continue
		}
		ids = append(ids, rel.URL[idx+1:])
	}
	if len(ids) == 0 {
		return nil, nil
	}

	batchURL := c.projectURL(fmt.Sprintf("/_apis/wit/workitems?ids=%s&$expand=all&errorPolicy=omit&api-version=%s",
		strings.Join(ids, ","), apiVersion))

	var list workItemList
	if err := c.doJSON(ctx, "GET", batchURL, "", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch linked work items: %w", err)
	}

	var cases []*types.ExistingTestCase
	for _, item := range list.Value {
		if fieldString(item.Fields, fieldWorkItemType) != "Test Case" {
			continue
		}
		rev := item.Rev
		if rev == 0 {
			rev = 1
		}
		tags := splitTags(fieldString(item.Fields, fieldTags))
		cases = append(cases, &types.ExistingTestCase{
			ID:       item.ID,
			Title:    fieldString(item.Fields, fieldTitle),
			Steps:    ParseStepsXML(fieldString(item.Fields, fieldSteps)),
			Priority: fieldInt(item.Fields, fieldPriority, 2),
			Tags:     tags,
			Revision: rev,
			Category: categoryFromTags(tags),
		})
	}

	log.Printf("[ADO] story %d has %d linked test cases", storyID, len(cases))
	return cases, nil
}

// CreateTestCase creates a Test Case work item linked to the story and
// returns its new ID.
func (c *Client) CreateTestCase(ctx context.Context, tc *types.GeneratedTestCase, storyID int) (int, error) {
	document, err := c.testCaseDocument(tc, "add")
	if err != nil {
		return 0, err
	}
	document = append(document, patchOp{
		Op:   "add",
		Path: "/relations/-",
		Value: map[string]any{
			"rel":        "System.LinkTypes.Hierarchy-Reverse",
			"url":        c.orgAPIURL(fmt.Sprintf("/_apis/wit/workItems/%d", storyID)),
			"attributes": map[string]any{"comment": "Linked by testsync"},
		},
	})

	url := c.projectURL(fmt.Sprintf("/_apis/wit/workitems/$Test%%20Case?api-version=%s", apiVersion))

	var created struct {
		ID int `json:"id"`
	}
	if err := c.doJSON(ctx, "PATCH", url, "application/json-patch+json", document, &created); err != nil {
		return 0, fmt.Errorf("failed to create test case: %w", err)
	}

	log.Printf("[ADO] created Test Case #%d: %s", created.ID, tc.Title)
	return created.ID, nil
}

// UpdateTestCase patches an existing Test Case with refreshed content.
func (c *Client) UpdateTestCase(ctx context.Context, tcID int, tc *types.GeneratedTestCase) error {
	document, err := c.testCaseDocument(tc, "replace")
	if err != nil {
		return err
	}

	url := c.projectURL(fmt.Sprintf("/_apis/wit/workitems/%d?api-version=%s", tcID, apiVersion))
	if err := c.doJSON(ctx, "PATCH", url, "application/json-patch+json", document, nil); err != nil {
		return fmt.Errorf("failed to update test case %d: %w", tcID, err)
	}

	log.Printf("[ADO] updated Test Case #%d: %s", tcID, tc.Title)
	return nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// testCaseDocument builds the JSON-patch field operations shared by
// create and update.
func (c *Client) testCaseDocument(tc *types.GeneratedTestCase, op string) ([]patchOp, error) {
	bddText := fmt.Sprintf("<b>Given</b> %s<br><b>When</b> %s<br><b>Then</b> %s", tc.Given, tc.When, tc.Then)

	stepsValue, err := BuildStepsXML(tc.OrderedSteps())
	if err != nil {
		return nil, err
	}

	return []patchOp{
		{Op: op, Path: "/fields/" + fieldTitle, Value: tc.Title},
		{Op: op, Path: "/fields/" + fieldDescription, Value: bddText},
		{Op: op, Path: "/fields/" + fieldSteps, Value: stepsValue},
		{Op: op, Path: "/fields/" + fieldPriority, Value: tc.Priority},
		{Op: op, Path: "/fields/" + fieldTags, Value: strings.Join(tc.Tags, "; ")},
	}, nil
}

func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]any, key string, fallback int) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// categoryFromTags returns the scenario category when one of the work
// item's tags names one, empty otherwise.
func categoryFromTags(tags []string) types.Category {
	for _, t := range tags {
		if c, err := types.ParseCategory(t); err == nil {
			return c
		}
	}
	return ""
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ";") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
