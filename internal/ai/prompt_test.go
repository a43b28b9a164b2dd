package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

func TestBuildUserPrompt(t *testing.T) {
	story := &types.UserStory{
		ID:          123,
		Title:       "Password reset",
		Description: "As a user I want to reset my password",
		Priority:    2,
		Tags:        []string{"auth", "email"},
	}
	gap := types.AcceptanceCriterion{Raw: "Reset link expires after 24 hours"}

	prompt := buildUserPrompt(story, gap)
	assert.Contains(t, prompt, "User Story #123")
	assert.Contains(t, prompt, "Password reset")
	assert.Contains(t, prompt, "auth, email")
	assert.Contains(t, prompt, "Reset link expires after 24 hours")
	assert.Contains(t, prompt, "ONLY for the criterion above")
}

func TestBuildUserPromptNoTags(t *testing.T) {
	story := &types.UserStory{ID: 5, Title: "t", Description: "d", Priority: 3}
	prompt := buildUserPrompt(story, types.AcceptanceCriterion{Raw: "c"})
	assert.NotContains(t, prompt, "**Tags:**")
}

func TestSystemPromptContract(t *testing.T) {
	// The downstream parser and reconciliation engine rely on these
	// exact output rules.
	assert.Contains(t, systemPrompt, `"positive", "negative", "edge"`)
	assert.Contains(t, systemPrompt, "strict JSON array")
	assert.Contains(t, systemPrompt, "expected_result")
}
