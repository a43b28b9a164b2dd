// Package ai generates BDD test-case proposals for coverage gaps using
// the Anthropic API.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// Model constants. Generation is a reasoning-heavy task, so the
// default is the high-end model; TSP_MODEL overrides it.
const (
	ModelDefault = "claude-sonnet-4-5-20250929"
)

// GetModel returns the generation model, checking TSP_MODEL first.
func GetModel() string {
	if model := os.Getenv("TSP_MODEL"); model != "" {
		return model
	}
	return ModelDefault
}

// Generator produces BDD test-case proposals from user stories.
type Generator struct {
	client *anthropic.Client
	model  string
	retry  RetryConfig

	// Limits concurrent API calls when generating for several gaps.
	concurrencySem *semaphore.Weighted
}

// Config holds generator configuration.
type Config struct {
	APIKey string      // Anthropic API key (if empty, reads from ANTHROPIC_API_KEY env var)
	Model  string      // Model to use (default: GetModel())
	Retry  RetryConfig // Retry configuration (uses defaults if not specified)
}

// NewGenerator creates a test-case generator.
func NewGenerator(cfg *Config) (*Generator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetModel()
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var sem *semaphore.Weighted
	if retry.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}

	return &Generator{
		client:         &client,
		model:          model,
		retry:          retry,
		concurrencySem: sem,
	}, nil
}

// Generate produces proposals for every gap, in gap order. Each gap is
// generated independently (concurrently, bounded by the configured
// limit) and the results are flattened gap-by-gap so the batch arrives
// at the reconciliation engine in gap order, then generation order.
func (g *Generator) Generate(ctx context.Context, story *types.UserStory, gaps []types.AcceptanceCriterion) ([]*types.GeneratedTestCase, error) {
	if len(gaps) == 0 {
		return nil, nil
	}

	perGap := make([][]*types.GeneratedTestCase, len(gaps))
	errs := make([]error, len(gaps))

	done := make(chan int, len(gaps))
	for i := range gaps {
		go func(i int) {
			defer func() { done <- i }()
			perGap[i], errs[i] = g.generateForGap(ctx, story, gaps[i])
		}(i)
	}
	for range gaps {
		<-done
	}

	var cases []*types.GeneratedTestCase
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("generating for criterion %q: %w", gaps[i].Raw, err)
		}
		cases = append(cases, perGap[i]...)
	}
	return cases, nil
}

// generateForGap asks the model for one or more test cases covering a
// single acceptance criterion.
func (g *Generator) generateForGap(ctx context.Context, story *types.UserStory, gap types.AcceptanceCriterion) ([]*types.GeneratedTestCase, error) {
	prompt := buildUserPrompt(story, gap)

	responseText, err := g.callModel(ctx, prompt, "generate_test_cases", 4096)
	if err != nil {
		return nil, err
	}

	parseResult := Parse[[]rawTestCase](responseText, ParseOptions{Context: "generated test cases"})
	if !parseResult.Success {
		return nil, fmt.Errorf("failed to parse generation response: %s (response: %s)",
			parseResult.Error, truncateString(responseText, 200))
	}

	cases := make([]*types.GeneratedTestCase, 0, len(parseResult.Data))
	for _, raw := range parseResult.Data {
		cases = append(cases, raw.toTestCase(gap))
	}
	return cases, nil
}

// callModel makes one Messages API call with retry and the concurrency
// limit applied.
func (g *Generator) callModel(ctx context.Context, prompt, operation string, maxTokens int) (string, error) {
	if g.concurrencySem != nil {
		if err := g.concurrencySem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("failed to acquire concurrency slot for %s: %w", operation, err)
		}
		defer g.concurrencySem.Release(1)
	}

	startTime := time.Now()
	var response *anthropic.Message
	err := g.retryWithBackoff(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := g.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(g.model),
			MaxTokens: int64(maxTokens),
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	duration := time.Since(startTime)
	fmt.Printf("AI %s call: input=%d tokens, output=%d tokens, duration=%v\n",
		operation, response.Usage.InputTokens, response.Usage.OutputTokens, duration)

	return responseText, nil
}

// rawTestCase is the JSON shape the model is instructed to emit.
type rawTestCase struct {
	Title    string `json:"title"`
	Given    string `json:"given"`
	When     string `json:"when"`
	Then     string `json:"then"`
	Steps    []struct {
		Action         string `json:"action"`
		ExpectedResult string `json:"expected_result"`
	} `json:"steps"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// toTestCase converts the raw model output into the typed proposal.
// The category string is lower-cased but otherwise carried as-is:
// the reconciliation engine rejects unrecognized values as malformed
// rather than this layer guessing a fallback.
func (r rawTestCase) toTestCase(gap types.AcceptanceCriterion) *types.GeneratedTestCase {
	steps := make([]types.TestStep, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, types.TestStep{Action: s.Action, ExpectedResult: s.ExpectedResult})
	}
	priority := r.Priority
	if priority == 0 {
		priority = 2
	}
	return &types.GeneratedTestCase{
		Title:           strings.TrimSpace(r.Title),
		Given:           strings.TrimPrefix(strings.TrimSpace(r.Given), "Given "),
		When:            strings.TrimPrefix(strings.TrimSpace(r.When), "When "),
		Then:            strings.TrimPrefix(strings.TrimSpace(r.Then), "Then "),
		Steps:           steps,
		Priority:        priority,
		Tags:            r.Tags,
		Category:        types.Category(strings.ToLower(strings.TrimSpace(r.Category))),
		SourceCriterion: gap.Raw,
	}
}
