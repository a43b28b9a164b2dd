package similarity

import (
	"testing"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

func TestScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"verify login\ngiven a user\nwhen they log in\nthen dashboard", "verify login\ngiven a user\nwhen they sign in\nthen dashboard"},
		{"abc", "xyz"},
		{"", "nonempty"},
		{"same", "same"},
	}
	for _, p := range pairs {
		ab := Score(p[0], p[1])
		ba := Score(p[1], p[0])
		if ab != ba {
			t.Errorf("Score(%q,%q)=%v but Score(%q,%q)=%v", p[0], p[1], ab, p[1], p[0], ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Score(%q,%q)=%v out of [0,1]", p[0], p[1], ab)
		}
	}
}

func TestScoreIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "verify login\ngiven x\nwhen y\nthen z"} {
		if got := Score(s, s); got != 1.0 {
			t.Errorf("Score(%q,%q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestScoreOneOnlyForIdentical(t *testing.T) {
	if got := Score("given x when y", "given x when y then z"); got >= 1.0 {
		t.Errorf("score for non-identical content should be < 1.0, got %v", got)
	}
}

func TestScoreOrderSensitive(t *testing.T) {
	ordered := "given a user exists\nwhen the user logs in\nthen access is granted"
	permuted := "when the user logs in\nthen access is granted\ngiven a user exists"
	if got := Score(ordered, permuted); got >= 1.0 {
		t.Errorf("permuting step order must lower the score, got %v", got)
	}
}

func TestScoreMinorRewording(t *testing.T) {
	a := "verify password reset\ngiven a registered user\nwhen they request a password reset\nthen a reset email is sent"
	b := "verify password reset\ngiven a registered user\nwhen they request a password reset\nthen a reset email arrives"
	if got := Score(a, b); got < 0.90 {
		t.Errorf("minor rewording should stay above threshold, got %v", got)
	}
	c := "verify account deletion\ngiven an admin\nwhen they purge an account\nthen the data is gone"
	if got := Score(a, c); got >= 0.90 {
		t.Errorf("unrelated cases should score below threshold, got %v", got)
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	// A candidate scoring exactly at the threshold is a match (>=, not >).
	sig := "abcd"
	candidates := []Candidate{{ID: 7, Signature: "abcd"}}
	id, score, matched := Classify(sig, candidates, 1.0)
	if !matched || id != 7 || score != 1.0 {
		t.Errorf("exact-threshold pair must match: id=%d score=%v matched=%v", id, score, matched)
	}
}

func TestClassifyNoCandidates(t *testing.T) {
	_, score, matched := Classify("anything", nil, 0.0)
	if matched || score != 0 {
		t.Errorf("empty candidate set must not match (score=%v matched=%v)", score, matched)
	}
}

func TestClassifyKeepsMaximum(t *testing.T) {
	sig := "verify login\ngiven a user\nwhen they log in\nthen dashboard"
	candidates := []Candidate{
		{ID: 101, Signature: "totally unrelated content"},
		{ID: 102, Signature: sig},
		{ID: 103, Signature: "verify login\ngiven a user\nwhen they log in\nthen home page"},
	}
	id, score, matched := Classify(sig, candidates, 0.90)
	if !matched || id != 102 {
		t.Errorf("expected best match 102, got id=%d matched=%v", id, matched)
	}
	if score != 1.0 {
		t.Errorf("expected score 1.0 for identical signature, got %v", score)
	}
}

func TestClassifyTieBreakLowestID(t *testing.T) {
	sig := "identical signature"
	candidates := []Candidate{
		{ID: 900, Signature: sig},
		{ID: 12, Signature: sig},
		{ID: 450, Signature: sig},
	}
	id, _, matched := Classify(sig, candidates, 0.90)
	if !matched || id != 12 {
		t.Errorf("tie must resolve to lowest stable ID, got %d", id)
	}
}

func TestProposalSignatureNormalized(t *testing.T) {
	a := &types.GeneratedTestCase{Title: "Verify Login  ", Given: "A user", When: "They LOG in", Then: "Dashboard."}
	b := &types.GeneratedTestCase{Title: "verify login", Given: "a user", When: "they log in", Then: "dashboard"}
	if ProposalSignature(a) != ProposalSignature(b) {
		t.Errorf("signatures should be normalization-stable:\n%q\n%q", ProposalSignature(a), ProposalSignature(b))
	}
}

func TestProposalAndExistingSignaturesAlign(t *testing.T) {
	// A proposal must score 1.0 against the tracker item a previous
	// run wrote from it.
	p := &types.GeneratedTestCase{
		Title: "Verify login",
		Given: "a registered user",
		When:  "they submit valid credentials",
		Then:  "they reach the dashboard",
	}
	written := &types.ExistingTestCase{ID: 9, Title: p.Title, Steps: p.OrderedSteps()}
	if got := Score(ProposalSignature(p), ExistingSignature(written)); got != 1.0 {
		t.Errorf("round-tripped case should score 1.0, got %v", got)
	}
}

func TestExistingSignaturePreservesStepOrder(t *testing.T) {
	a := &types.ExistingTestCase{
		ID:    1,
		Title: "Verify login",
		Steps: []types.TestStep{
			{Action: "Given a user", ExpectedResult: "ok"},
			{Action: "When they log in", ExpectedResult: "ok"},
		},
	}
	b := &types.ExistingTestCase{
		ID:    2,
		Title: "Verify login",
		Steps: []types.TestStep{
			{Action: "When they log in", ExpectedResult: "ok"},
			{Action: "Given a user", ExpectedResult: "ok"},
		},
	}
	if ExistingSignature(a) == ExistingSignature(b) {
		t.Error("step order must be preserved in signatures, not treated as a set")
	}
}
