// Package delta identifies the gap between a story's acceptance
// criteria and the test coverage already recorded in the tracker.
//
// The analysis is a pure query over in-memory collections: it never
// mutates existing test cases and performs no I/O. It is recomputed
// for every run rather than cached.
package delta

import (
	"strings"

	"github.com/aks2learn/Test-Sync-Pro/internal/textnorm"
	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// DefaultCoverageThreshold is the internal overlap ratio above which an
// acceptance criterion counts as covered by existing test content. It
// is intentionally independent of the dedup threshold: coverage is a
// containment question ("is this exercised somewhere, possibly inside a
// longer scenario"), not a whole-case similarity question.
const DefaultCoverageThreshold = 0.70

// criterionBullets are the list markers stripped from the front of each
// acceptance-criteria line before the line becomes a criterion.
const criterionBullets = "-•*0123456789.) \t"

// ExtractCriteria splits free-text acceptance criteria into discrete,
// ordered criteria. Empty lines and bare bullets are dropped; each kept
// line carries both its raw and normalized form.
func ExtractCriteria(acText string) []types.AcceptanceCriterion {
	var criteria []types.AcceptanceCriterion
	acText = strings.ReplaceAll(acText, "\r\n", "\n")
	for _, raw := range strings.Split(acText, "\n") {
		clean := strings.TrimLeft(strings.TrimSpace(raw), criterionBullets)
		if clean == "" {
			continue
		}
		criteria = append(criteria, types.AcceptanceCriterion{
			Raw:        clean,
			Normalized: textnorm.Normalize(clean),
		})
	}
	return criteria
}

// FindGaps returns the criteria with no sufficient coverage in the
// existing test cases, preserving criteria order, together with the
// coverage ratio. The ratio is (covered / total), defined as 1.0 when
// there are zero criteria.
func FindGaps(criteria []types.AcceptanceCriterion, existing []types.ExistingTestCase) ([]types.AcceptanceCriterion, float64) {
	return FindGapsAt(criteria, existing, DefaultCoverageThreshold)
}

// FindGapsAt is FindGaps with an explicit coverage threshold.
func FindGapsAt(criteria []types.AcceptanceCriterion, existing []types.ExistingTestCase, threshold float64) ([]types.AcceptanceCriterion, float64) {
	if len(criteria) == 0 {
		return nil, 1.0
	}

	coverage := coverageText(existing)

	var gaps []types.AcceptanceCriterion
	for _, c := range criteria {
		if !covered(c.Normalized, coverage, threshold) {
			gaps = append(gaps, c)
		}
	}

	ratio := float64(len(criteria)-len(gaps)) / float64(len(criteria))
	return gaps, ratio
}

// coverageText flattens existing test titles and steps into one
// normalized block the criteria are checked against.
func coverageText(existing []types.ExistingTestCase) string {
	var parts []string
	for _, tc := range existing {
		parts = append(parts, textnorm.Normalize(tc.Title))
		for _, step := range tc.Steps {
			parts = append(parts, textnorm.Normalize(step.Action))
			parts = append(parts, textnorm.Normalize(step.ExpectedResult))
		}
	}
	return textnorm.JoinSteps(parts)
}

// covered reports whether a normalized criterion is already represented
// in the coverage text: either contained verbatim, or overlapping it
// through a long enough common run of text.
func covered(criterion, coverage string, threshold float64) bool {
	if coverage == "" || criterion == "" {
		return false
	}
	if strings.Contains(coverage, criterion) {
		return true
	}
	best := longestCommonRun(criterion, coverage)
	ratio := float64(2*best) / float64(len(criterion)+len(coverage))
	return ratio >= threshold
}

// longestCommonRun returns the length of the longest common substring
// of a and b, in bytes.
func longestCommonRun(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	best := 0
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return best
}
