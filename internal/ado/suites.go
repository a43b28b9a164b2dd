package ado

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

type suiteInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ParentSuite *struct {
		ID int `json:"id"`
	} `json:"parentSuite"`
}

// rootSuiteID returns the root suite of the configured test plan.
func (c *Client) rootSuiteID(ctx context.Context) (int, error) {
	url := c.projectURL(fmt.Sprintf("/_apis/testplan/Plans/%d?api-version=%s", c.planID, apiVersion))

	var plan struct {
		RootSuite struct {
			ID int `json:"id"`
		} `json:"rootSuite"`
	}
	if err := c.doJSON(ctx, "GET", url, "", nil, &plan); err != nil {
		return 0, fmt.Errorf("failed to fetch test plan %d: %w", c.planID, err)
	}
	return plan.RootSuite.ID, nil
}

// listChildSuites returns name -> id for the immediate children of the
// given suite.
func (c *Client) listChildSuites(ctx context.Context, parentID int) (map[string]int, error) {
	url := c.projectURL(fmt.Sprintf("/_apis/testplan/Plans/%d/Suites?api-version=%s", c.planID, apiVersion))

	var list struct {
		Value []suiteInfo `json:"value"`
	}
	if err := c.doJSON(ctx, "GET", url, "", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list suites for plan %d: %w", c.planID, err)
	}

	children := make(map[string]int)
	for _, s := range list.Value {
		if s.ParentSuite != nil && s.ParentSuite.ID == parentID {
			children[s.Name] = s.ID
		}
	}
	return children, nil
}

// createStaticSuite creates a folder suite under the given parent.
func (c *Client) createStaticSuite(ctx context.Context, parentID int, name string) (int, error) {
	url := c.projectURL(fmt.Sprintf("/_apis/testplan/Plans/%d/Suites?api-version=%s", c.planID, apiVersion))

	body := map[string]any{
		"suiteType":   "staticTestSuite",
		"name":        name,
		"parentSuite": map[string]any{"id": parentID},
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := c.doJSON(ctx, "POST", url, "application/json", body, &created); err != nil {
		return 0, fmt.Errorf("failed to create suite %q: %w", name, err)
	}

	log.Printf("[ADO] created suite %q (id=%d)", name, created.ID)
	return created.ID, nil
}

// EnsureFolders guarantees every named folder suite exists directly
// under the plan root and returns name -> suite ID. Existing folders
// are reused, never recreated.
func (c *Client) EnsureFolders(ctx context.Context, names []string) (map[string]int, error) {
	rootID, err := c.rootSuiteID(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := c.listChildSuites(ctx, rootID)
	if err != nil {
		return nil, err
	}

	folderMap := make(map[string]int, len(names))
	for _, name := range names {
		if id, ok := existing[name]; ok {
			folderMap[name] = id
			continue
		}
		id, err := c.createStaticSuite(ctx, rootID, name)
		if err != nil {
			return nil, err
		}
		folderMap[name] = id
	}
	return folderMap, nil
}

// suiteTestCaseIDs lists the test case work item ids in a suite.
func (c *Client) suiteTestCaseIDs(ctx context.Context, suiteID int) ([]int, error) {
	url := c.projectURL(fmt.Sprintf("/_apis/testplan/Plans/%d/Suites/%d/TestCase?api-version=%s",
		c.planID, suiteID, apiVersion))

	var list struct {
		Value []struct {
			WorkItem struct {
				ID int `json:"id"`
			} `json:"workItem"`
		} `json:"value"`
	}
	if err := c.doJSON(ctx, "GET", url, "", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to list test cases in suite %d: %w", suiteID, err)
	}

	ids := make([]int, 0, len(list.Value))
	for _, entry := range list.Value {
		ids = append(ids, entry.WorkItem.ID)
	}
	return ids, nil
}

// FillSuiteMemberships annotates each case with the names of the
// folder suites it currently belongs to. Read-only: no suites are
// created. With no test plan configured (plan id 0) memberships are
// left empty.
func (c *Client) FillSuiteMemberships(ctx context.Context, cases []*types.ExistingTestCase) error {
	if c.planID == 0 || len(cases) == 0 {
		return nil
	}

	rootID, err := c.rootSuiteID(ctx)
	if err != nil {
		return err
	}
	children, err := c.listChildSuites(ctx, rootID)
	if err != nil {
		return err
	}

	byID := make(map[int]*types.ExistingTestCase, len(cases))
	for _, tc := range cases {
		byID[tc.ID] = tc
	}

	// Suite names in sorted order so memberships come out the same
	// across runs
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids, err := c.suiteTestCaseIDs(ctx, children[name])
		if err != nil {
			return err
		}
		for _, id := range ids {
			if tc, ok := byID[id]; ok {
				tc.Suites = append(tc.Suites, name)
			}
		}
	}
	return nil
}

// AddTestToSuite adds a test case to a suite. Adding a case already in
// the suite is a no-op on the service side, which keeps suite
// membership additive.
func (c *Client) AddTestToSuite(ctx context.Context, suiteID, testCaseID int) error {
	url := c.projectURL(fmt.Sprintf("/_apis/testplan/Plans/%d/Suites/%d/TestCase?api-version=%s",
		c.planID, suiteID, apiVersion))

	body := []map[string]any{
		{"workItem": map[string]any{"id": testCaseID}},
	}
	if err := c.doJSON(ctx, "POST", url, "application/json", body, nil); err != nil {
		return fmt.Errorf("failed to add test case %d to suite %d: %w", testCaseID, suiteID, err)
	}
	return nil
}
