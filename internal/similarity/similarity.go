// Package similarity scores pairwise similarity between test cases and
// classifies proposals against candidate inventories.
//
// The measure is the Ratcliff/Obershelp sequence ratio over normalized
// test-case signatures: 2*M / (len(a)+len(b)), where M is the total
// length of matched blocks. It is symmetric, deterministic, bounded to
// [0,1], length-normalized, and order-sensitive: permuting the
// Given/When/Then steps lowers the score, and 1.0 is reached only for
// identical normalized content.
package similarity

import (
	"github.com/aks2learn/Test-Sync-Pro/internal/textnorm"
	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// Score returns the similarity of two normalized signatures in [0,1].
// Score(a,b) == Score(b,a) for all inputs, and Score(a,a) == 1.0.
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := matchedLength(ra, rb)
	return float64(2*m) / float64(total)
}

// matchedLength sums the lengths of matching blocks: the longest common
// substring, then recursively the pieces to its left and right. Ties on
// block length resolve to the earliest position in a, then in b, so the
// result is deterministic.
func matchedLength(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedLength(a[:ai], b[:bi])
	total += matchedLength(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonBlock finds the longest common substring of a and b.
// Returns the start offsets and the length (zero when nothing matches).
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] = length of common suffix of a[:i] and b[:j]
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}

// ProposalSignature builds the comparable signature of a generated test
// case: normalized title followed by the ordered concrete steps (the
// Given/When/Then triple is expanded to steps when none were supplied).
// Proposal and existing signatures share one shape so that a proposal
// matches the item a previous run wrote from it.
func ProposalSignature(tc *types.GeneratedTestCase) string {
	steps := tc.OrderedSteps()
	parts := make([]string, 0, len(steps)+1)
	parts = append(parts, textnorm.Normalize(tc.Title))
	for _, s := range steps {
		parts = append(parts, textnorm.Normalize(s.Action+" "+s.ExpectedResult))
	}
	return textnorm.JoinSteps(parts)
}

// ExistingSignature builds the comparable signature of a tracker test
// case: normalized title followed by each step's action and expected
// result, in step order.
func ExistingSignature(tc *types.ExistingTestCase) string {
	parts := make([]string, 0, len(tc.Steps)+1)
	parts = append(parts, textnorm.Normalize(tc.Title))
	for _, s := range tc.Steps {
		parts = append(parts, textnorm.Normalize(s.Action+" "+s.ExpectedResult))
	}
	return textnorm.JoinSteps(parts)
}

// Candidate is one entry in the inventory a proposal is classified
// against. ID is the tracker-assigned identifier for existing cases, or
// a batch index for within-batch comparison.
type Candidate struct {
	ID        int
	Signature string
}

// Classify evaluates sig against every candidate, keeping the maximum
// score. It reports a match only when the best score meets the
// threshold (>=, so a pair scoring exactly at the threshold matches).
// When several candidates share the maximum score the lowest ID wins,
// keeping reruns deterministic.
func Classify(sig string, candidates []Candidate, threshold float64) (bestID int, bestScore float64, matched bool) {
	found := false
	for _, c := range candidates {
		score := Score(sig, c.Signature)
		if !found || score > bestScore || (score == bestScore && c.ID < bestID) {
			found = true
			bestScore = score
			bestID = c.ID
		}
	}
	if found && bestScore >= threshold {
		return bestID, bestScore, true
	}
	return 0, bestScore, false
}
