package reconcile

import (
	"fmt"

	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// DecisionKind is the action decided for one proposal.
type DecisionKind string

const (
	DecisionCreate DecisionKind = "create"
	DecisionUpdate DecisionKind = "update"
	DecisionSkip   DecisionKind = "skip"
)

// IsValid checks if the decision kind is valid
func (k DecisionKind) IsValid() bool {
	switch k {
	case DecisionCreate, DecisionUpdate, DecisionSkip:
		return true
	}
	return false
}

// SkipReason explains why a proposal was skipped.
type SkipReason string

const (
	// SkipDuplicateInBatch means the proposal duplicates an earlier
	// proposal already decided Create in the same run.
	SkipDuplicateInBatch SkipReason = "duplicate_of_batch_item"

	// SkipMalformed means the proposal failed structural validation
	// (empty title or no steps) and was excluded from reconciliation.
	SkipMalformed SkipReason = "malformed"
)

// Decision is the reconciliation outcome for a single proposal.
// Exactly one decision exists per proposal.
type Decision struct {
	Kind DecisionKind `json:"kind"`

	// ExistingID is the tracker id of the matched test case.
	// Only set when Kind is DecisionUpdate.
	ExistingID int `json:"existing_id,omitempty"`

	// Score is the best similarity score observed while classifying
	// this proposal (against existing inventory or the batch).
	Score float64 `json:"score"`

	// SkipReason is set only when Kind is DecisionSkip.
	SkipReason SkipReason `json:"skip_reason,omitempty"`

	// BatchDuplicateOf is the index (in the proposal batch) of the
	// earlier Create this proposal duplicates. Only meaningful when
	// SkipReason is SkipDuplicateInBatch.
	BatchDuplicateOf int `json:"batch_duplicate_of,omitempty"`

	// Suites is the folder assignment: the non-empty set of suite
	// names the decided case must belong to. Empty only for Skip.
	Suites []string `json:"suites,omitempty"`
}

// Validate checks if the decision has consistent values.
func (d *Decision) Validate() error {
	if !d.Kind.IsValid() {
		return fmt.Errorf("invalid decision kind: %q", d.Kind)
	}
	if d.Score < 0.0 || d.Score > 1.0 {
		return fmt.Errorf("score must be between 0.0 and 1.0 (got %.2f)", d.Score)
	}
	switch d.Kind {
	case DecisionUpdate:
		if d.ExistingID <= 0 {
			return fmt.Errorf("existing_id must be set for update decisions")
		}
		if len(d.Suites) == 0 {
			return fmt.Errorf("update decisions require a folder assignment")
		}
	case DecisionCreate:
		if d.ExistingID != 0 {
			return fmt.Errorf("existing_id must not be set for create decisions")
		}
		if len(d.Suites) == 0 {
			return fmt.Errorf("create decisions require a folder assignment")
		}
	case DecisionSkip:
		if d.SkipReason == "" {
			return fmt.Errorf("skip decisions require a reason")
		}
		if len(d.Suites) != 0 {
			return fmt.Errorf("skip decisions must not carry a folder assignment")
		}
	}
	return nil
}

// Outcome pairs a proposal with its decision.
type Outcome struct {
	Proposal *types.GeneratedTestCase `json:"proposal"`
	Decision Decision                 `json:"decision"`
}

// WriteConflict records two or more decisions targeting the same
// existing tracker id. Each decision is still valid per proposal;
// resolving the write collision belongs to the write layer.
type WriteConflict struct {
	ExistingID      int   `json:"existing_id"`
	ProposalIndexes []int `json:"proposal_indexes"`
}

// Stats provides metrics about a reconciliation run.
type Stats struct {
	TotalProposals  int `json:"total_proposals"`
	CreateCount     int `json:"create_count"`
	UpdateCount     int `json:"update_count"`
	SkipCount       int `json:"skip_count"`
	MalformedCount  int `json:"malformed_count"`
	ComparisonsMade int `json:"comparisons_made"`
}

// Result is the complete output of one reconciliation run: the ordered
// decision list, the write conflicts, and run statistics.
type Result struct {
	Outcomes  []Outcome       `json:"outcomes"`
	Conflicts []WriteConflict `json:"conflicts,omitempty"`
	Stats     Stats           `json:"stats"`
}

// SkipReasons returns the reasons for every skipped proposal, in
// decision order.
func (r *Result) SkipReasons() []SkipReason {
	var reasons []SkipReason
	for _, o := range r.Outcomes {
		if o.Decision.Kind == DecisionSkip {
			reasons = append(reasons, o.Decision.SkipReason)
		}
	}
	return reasons
}

// Validate checks if the result is internally consistent.
func (r *Result) Validate() error {
	var creates, updates, skips, malformed int
	for i, o := range r.Outcomes {
		if err := o.Decision.Validate(); err != nil {
			return fmt.Errorf("outcome %d: %w", i, err)
		}
		switch o.Decision.Kind {
		case DecisionCreate:
			creates++
		case DecisionUpdate:
			updates++
		case DecisionSkip:
			skips++
			if o.Decision.SkipReason == SkipMalformed {
				malformed++
			}
			if o.Decision.SkipReason == SkipDuplicateInBatch {
				dup := o.Decision.BatchDuplicateOf
				if dup < 0 || dup >= i {
					return fmt.Errorf("outcome %d: batch duplicate must reference an earlier proposal (got %d)", i, dup)
				}
				if r.Outcomes[dup].Decision.Kind != DecisionCreate {
					return fmt.Errorf("outcome %d: batch duplicate references %d, which is not a create", i, dup)
				}
			}
		}
	}
	if r.Stats.TotalProposals != len(r.Outcomes) {
		return fmt.Errorf("stats.total_proposals (%d) does not match outcomes length (%d)",
			r.Stats.TotalProposals, len(r.Outcomes))
	}
	if r.Stats.CreateCount != creates || r.Stats.UpdateCount != updates || r.Stats.SkipCount != skips {
		return fmt.Errorf("stats counts (%d/%d/%d) do not match outcomes (%d/%d/%d)",
			r.Stats.CreateCount, r.Stats.UpdateCount, r.Stats.SkipCount, creates, updates, skips)
	}
	if r.Stats.MalformedCount != malformed {
		return fmt.Errorf("stats.malformed_count (%d) does not match outcomes (%d)",
			r.Stats.MalformedCount, malformed)
	}
	for _, c := range r.Conflicts {
		if len(c.ProposalIndexes) < 2 {
			return fmt.Errorf("conflict on id %d must involve at least two proposals", c.ExistingID)
		}
		for _, idx := range c.ProposalIndexes {
			if idx < 0 || idx >= len(r.Outcomes) {
				return fmt.Errorf("conflict on id %d references invalid proposal index %d", c.ExistingID, idx)
			}
			d := r.Outcomes[idx].Decision
			if d.Kind != DecisionUpdate || d.ExistingID != c.ExistingID {
				return fmt.Errorf("conflict on id %d references proposal %d, which does not update it", c.ExistingID, idx)
			}
		}
	}
	return nil
}
