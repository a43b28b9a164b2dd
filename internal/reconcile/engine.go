package reconcile

import (
	"fmt"
	"log"
	"sort"

	"github.com/aks2learn/Test-Sync-Pro/internal/similarity"
	"github.com/aks2learn/Test-Sync-Pro/internal/suites"
	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// Engine drives one reconciliation run. It is synchronous, performs no
// I/O, and holds no state between runs; a single Engine is safe to use
// concurrently for different stories.
type Engine struct {
	cfg   Config
	names suites.Names
}

// New creates a reconciliation engine. Configuration is validated here
// so a run never starts with a malformed threshold.
func New(cfg Config, names suites.Names) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := names.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &Engine{cfg: cfg, names: names}, nil
}

// Reconcile computes one decision per proposal against the existing
// inventory, in input order. Proposals must arrive in gap order, then
// generation order; the decision list preserves that order.
func (e *Engine) Reconcile(existing []types.ExistingTestCase, proposals []*types.GeneratedTestCase) (*Result, error) {
	// Existing signatures are computed once per run.
	inventory := make([]similarity.Candidate, len(existing))
	for i, tc := range existing {
		inventory[i] = similarity.Candidate{ID: tc.ID, Signature: similarity.ExistingSignature(&tc)}
	}

	result := &Result{
		Outcomes: make([]Outcome, 0, len(proposals)),
	}
	// Proposals already decided Create in this run, available as
	// within-batch dedup candidates for later proposals. Candidate ID
	// is the batch index.
	var batchCreates []similarity.Candidate
	updatesByID := make(map[int][]int)

	for i, p := range proposals {
		outcome := Outcome{Proposal: p}

		if err := p.Validate(); err != nil {
			log.Printf("[RECONCILE] Skipping malformed proposal %d: %v", i, err)
			outcome.Decision = Decision{Kind: DecisionSkip, SkipReason: SkipMalformed}
			result.Outcomes = append(result.Outcomes, outcome)
			result.Stats.SkipCount++
			result.Stats.MalformedCount++
			continue
		}

		sig := similarity.ProposalSignature(p)

		// Dedup against the existing inventory first.
		id, score, matched := similarity.Classify(sig, inventory, e.cfg.DedupThreshold)
		result.Stats.ComparisonsMade += len(inventory)
		if matched {
			log.Printf("[RECONCILE] Proposal %d matches existing #%d (%.0f%%), updating",
				i, id, score*100)
			assigned, err := e.names.AssignCase(p)
			if err != nil {
				return nil, fmt.Errorf("classifying proposal %d: %w", i, err)
			}
			outcome.Decision = Decision{Kind: DecisionUpdate, ExistingID: id, Score: score, Suites: assigned}
			result.Outcomes = append(result.Outcomes, outcome)
			result.Stats.UpdateCount++
			updatesByID[id] = append(updatesByID[id], i)
			continue
		}
		bestScore := score

		// Then against earlier Creates in this batch. First seen wins:
		// a later near-duplicate is skipped, never the other way round.
		if e.cfg.WithinBatchDedup {
			idx, score, matched := similarity.Classify(sig, batchCreates, e.cfg.DedupThreshold)
			result.Stats.ComparisonsMade += len(batchCreates)
			if matched {
				log.Printf("[RECONCILE] Proposal %d duplicates batch proposal %d (%.0f%%), skipping",
					i, idx, score*100)
				outcome.Decision = Decision{
					Kind:             DecisionSkip,
					Score:            score,
					SkipReason:       SkipDuplicateInBatch,
					BatchDuplicateOf: idx,
				}
				result.Outcomes = append(result.Outcomes, outcome)
				result.Stats.SkipCount++
				continue
			}
			if score > bestScore {
				bestScore = score
			}
		}

		assigned, err := e.names.AssignCase(p)
		if err != nil {
			return nil, fmt.Errorf("classifying proposal %d: %w", i, err)
		}
		outcome.Decision = Decision{Kind: DecisionCreate, Score: bestScore, Suites: assigned}
		result.Outcomes = append(result.Outcomes, outcome)
		result.Stats.CreateCount++
		batchCreates = append(batchCreates, similarity.Candidate{ID: i, Signature: sig})
	}

	result.Stats.TotalProposals = len(proposals)
	result.Conflicts = collectConflicts(updatesByID)
	return result, nil
}

// collectConflicts turns the update index into the ordered list of
// existing ids targeted by more than one proposal.
func collectConflicts(updatesByID map[int][]int) []WriteConflict {
	var conflicts []WriteConflict
	for id, idxs := range updatesByID {
		if len(idxs) > 1 {
			conflicts = append(conflicts, WriteConflict{ExistingID: id, ProposalIndexes: idxs})
		}
	}
	sort.Slice(conflicts, func(a, b int) bool {
		return conflicts[a].ExistingID < conflicts[b].ExistingID
	})
	return conflicts
}
