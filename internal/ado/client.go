// Package ado is a minimal Azure DevOps REST client covering the work
// item and test plan endpoints the sync pipeline needs.
package ado

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const apiVersion = "7.1-preview"

// Client talks to the Azure DevOps REST API for one organization and
// project. All requests are rate limited to stay under the service's
// throttling thresholds.
type Client struct {
	HTTPClient *http.Client

	orgURL  string
	project string
	pat     string
	planID  int

	limiter *rate.Limiter
}

// NewClient creates a client for the given organization URL, project
// and personal access token.
func NewClient(orgURL, project, pat string, planID int) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		orgURL:  strings.TrimRight(orgURL, "/"),
		project: project,
		pat:     pat,
		planID:  planID,
		// ADO throttles around 200 requests per 5 minutes for PAT
		// auth; 10 rps with a small burst stays well clear
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
}

// projectURL returns the project-scoped API base.
func (c *Client) projectURL(path string) string {
	return fmt.Sprintf("%s/%s%s", c.orgURL, c.project, path)
}

// orgAPIURL returns the organization-scoped API base.
func (c *Client) orgAPIURL(path string) string {
	return c.orgURL + path
}

// doJSON performs one authenticated request, decoding the JSON
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, url, contentType string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("", c.pat)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
