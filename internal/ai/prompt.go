package ai

import (
	"fmt"
	"strings"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// systemPrompt governs the model's output. The contract matters more
// than the prose: strict JSON array, Given-When-Then structure, a
// closed category set, and concrete manual steps per case.
const systemPrompt = `You are a Senior QA Automation Engineer with deep expertise in BDD and
Azure DevOps. Your job is to generate test cases covering a single
acceptance criterion of a User Story.

### Rules
1. Use Given-When-Then (Gherkin) syntax for every test case.
2. Set "category" to exactly one of: "positive", "negative", "edge".
   - positive: happy-path flows that satisfy the criterion.
   - negative: invalid inputs, unauthorized access, error conditions.
   - edge: boundary values, empty/null fields, concurrency, limits.
3. Apply Boundary Value Analysis for every numeric / date / length
   constraint mentioned in the criterion.
4. Assign a Priority (1 = Critical, 2 = High, 3 = Medium, 4 = Low)
   based on business impact inferred from the story.
5. For each test case, also produce concrete steps (action + expected
   result pairs) that translate the Given-When-Then into manual test
   steps.
6. Generate only test cases for the criterion given; do not re-cover
   the rest of the story.

### Output format (strict JSON array - no markdown fences)
[
  {
    "title": "Verify <concise test objective>",
    "given": "<precondition>",
    "when": "<action>",
    "then": "<expected outcome>",
    "steps": [
      {"action": "<what the tester does>", "expected_result": "<what should happen>"}
    ],
    "priority": 2,
    "tags": ["login"],
    "category": "positive"
  }
]

Return ONLY the JSON array. No explanation, no markdown.`

// buildUserPrompt composes the user-role message for one gap.
func buildUserPrompt(story *types.UserStory, gap types.AcceptanceCriterion) string {
	parts := []string{
		fmt.Sprintf("## User Story #%d", story.ID),
		fmt.Sprintf("**Title:** %s", story.Title),
		fmt.Sprintf("**Description:** %s", story.Description),
		fmt.Sprintf("**Story Priority:** %d", story.Priority),
	}
	if len(story.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("**Tags:** %s", strings.Join(story.Tags, ", ")))
	}
	parts = append(parts,
		fmt.Sprintf("### Acceptance criterion to cover\n%s", gap.Raw),
		"Generate test cases ONLY for the criterion above.")
	return strings.Join(parts, "\n\n")
}
