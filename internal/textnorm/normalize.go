// Package textnorm canonicalizes free-text test content for stable
// comparison. All similarity scoring and coverage checks operate on
// normalized text so that casing, whitespace, and decorative
// punctuation never influence a reconciliation decision.
package textnorm

import "strings"

// decorative is the set of characters stripped from the leading and
// trailing boundary of a text unit. Bullets, numbering remnants, and
// sentence-final punctuation carry no semantic weight for comparison.
// Digits are deliberately absent: a criterion may legitimately end in
// a number ("limit is 10").
const decorative = " \t-–—•*·>.,;:!?…\"'`()[]"

// Normalize canonicalizes a single text unit: lower-case, internal
// whitespace runs collapsed to one space, boundary whitespace and
// decorative punctuation stripped. Word order is preserved.
//
// Normalize is pure and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, decorative)
}

// NormalizeAll maps Normalize over a slice, preserving order.
func NormalizeAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = Normalize(p)
	}
	return out
}

// JoinSteps joins already-normalized step texts with the canonical step
// separator. Steps stay ordered: Given/When/Then order is semantically
// meaningful and must not be treated as a set.
func JoinSteps(steps []string) string {
	return strings.Join(steps, "\n")
}
