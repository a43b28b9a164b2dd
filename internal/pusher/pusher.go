// Package pusher applies reconciliation decisions to the tracker:
// creating and updating test case work items and placing them into
// suite folders.
package pusher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aks2learn/Test-Sync-Pro/internal/reconcile"
	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

// Tracker is the write surface the pusher needs from the tracker
// client.
type Tracker interface {
	CreateTestCase(ctx context.Context, tc *types.GeneratedTestCase, storyID int) (int, error)
	UpdateTestCase(ctx context.Context, tcID int, tc *types.GeneratedTestCase) error
	EnsureFolders(ctx context.Context, names []string) (map[string]int, error)
	AddTestToSuite(ctx context.Context, suiteID, testCaseID int) error
}

// Options configures how decisions are applied.
type Options struct {
	// DryRun logs planned writes without invoking the tracker.
	DryRun bool

	// MaxParallel bounds concurrent tracker writes (default 4).
	MaxParallel int

	// WriteRetries is the number of attempts per write (default 3).
	WriteRetries int

	// FolderNames is the full set of suite folders to guarantee
	// before placement.
	FolderNames []string
}

// Pusher writes decided test cases to the tracker.
type Pusher struct {
	tracker Tracker
	opts    Options
}

// New creates a pusher over the given tracker.
func New(tracker Tracker, opts Options) *Pusher {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}
	if opts.WriteRetries <= 0 {
		opts.WriteRetries = 3
	}
	return &Pusher{tracker: tracker, opts: opts}
}

// Apply executes every Create and Update decision and places the
// written cases into their assigned suites. Skip decisions never reach
// the tracker.
//
// When two or more updates target the same existing id (a write
// conflict surfaced by reconciliation), only the first is applied;
// the rest are logged and counted as skipped writes.
//
// Suite membership is additive: cases are added to their assigned
// folders, never removed from folders they already belong to.
func (p *Pusher) Apply(ctx context.Context, storyID int, result *reconcile.Result) (*types.SyncResult, error) {
	sync := &types.SyncResult{
		RunID:   uuid.New().String(),
		StoryID: storyID,
	}

	conflictLosers := losingConflictIndexes(result)

	if p.opts.DryRun {
		p.logPlan(result, conflictLosers)
		sync.SkippedCount = result.Stats.SkipCount + len(conflictLosers)
		return sync, nil
	}

	folderMap, err := p.tracker.EnsureFolders(ctx, p.opts.FolderNames)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure suite folders: %w", err)
	}
	sync.FolderMap = folderMap

	writtenIDs := make([]int, len(result.Outcomes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxParallel)

	for i, outcome := range result.Outcomes {
		if outcome.Decision.Kind == reconcile.DecisionSkip {
			continue
		}
		if conflictLosers[i] {
			log.Printf("[PUSH] skipping proposal %d: write conflict on test case #%d",
				i, outcome.Decision.ExistingID)
			continue
		}

		g.Go(func() error {
			id, err := p.writeOne(gctx, storyID, outcome)
			if err != nil {
				return err
			}
			writtenIDs[i] = id
			return p.placeInSuites(gctx, id, outcome.Decision.Suites, folderMap)
		})
	}

	waitErr := g.Wait()

	for i, outcome := range result.Outcomes {
		switch {
		case outcome.Decision.Kind == reconcile.DecisionCreate && writtenIDs[i] != 0:
			sync.CreatedIDs = append(sync.CreatedIDs, writtenIDs[i])
		case outcome.Decision.Kind == reconcile.DecisionUpdate && writtenIDs[i] != 0:
			sync.UpdatedIDs = append(sync.UpdatedIDs, writtenIDs[i])
		}
	}
	sync.SkippedCount = result.Stats.SkipCount + len(conflictLosers)

	if waitErr != nil {
		// The batch partially applied. Return what was written so the
		// caller can journal it alongside the failure.
		log.Printf("[PUSH] story %d: batch failed after created=%v updated=%v: %v",
			storyID, sync.CreatedIDs, sync.UpdatedIDs, waitErr)
		return sync, waitErr
	}

	log.Printf("[PUSH] story %d: created=%d updated=%d skipped=%d",
		storyID, len(sync.CreatedIDs), len(sync.UpdatedIDs), sync.SkippedCount)
	return sync, nil
}

// writeOne performs the create or update for a single outcome with
// retry, returning the tracker id written.
func (p *Pusher) writeOne(ctx context.Context, storyID int, outcome reconcile.Outcome) (int, error) {
	switch outcome.Decision.Kind {
	case reconcile.DecisionCreate:
		var id int
		err := p.withRetry(ctx, func() error {
			var createErr error
			id, createErr = p.tracker.CreateTestCase(ctx, outcome.Proposal, storyID)
			return createErr
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create test case %q: %w", outcome.Proposal.Title, err)
		}
		return id, nil

	case reconcile.DecisionUpdate:
		id := outcome.Decision.ExistingID
		err := p.withRetry(ctx, func() error {
			return p.tracker.UpdateTestCase(ctx, id, outcome.Proposal)
		})
		if err != nil {
			return 0, fmt.Errorf("failed to update test case %d: %w", id, err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("unexpected decision kind %q", outcome.Decision.Kind)
}

// placeInSuites adds the written case to each assigned suite folder.
func (p *Pusher) placeInSuites(ctx context.Context, tcID int, suiteNames []string, folderMap map[string]int) error {
	for _, name := range suiteNames {
		suiteID, ok := folderMap[name]
		if !ok {
			return fmt.Errorf("no suite folder for %q", name)
		}
		err := p.withRetry(ctx, func() error {
			return p.tracker.AddTestToSuite(ctx, suiteID, tcID)
		})
		if err != nil {
			return fmt.Errorf("failed to place test case %d in %q: %w", tcID, name, err)
		}
	}
	return nil
}

func (p *Pusher) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < p.opts.WriteRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// losingConflictIndexes returns the proposal indexes that lose their
// write conflict: every conflicting index except the first.
func losingConflictIndexes(result *reconcile.Result) map[int]bool {
	losers := make(map[int]bool)
	for _, conflict := range result.Conflicts {
		for _, idx := range conflict.ProposalIndexes[1:] {
			losers[idx] = true
		}
	}
	return losers
}

// logPlan reports what a real run would write.
func (p *Pusher) logPlan(result *reconcile.Result, conflictLosers map[int]bool) {
	for i, outcome := range result.Outcomes {
		switch outcome.Decision.Kind {
		case reconcile.DecisionCreate:
			log.Printf("[PUSH] dry-run: would create %q in suites %v",
				outcome.Proposal.Title, outcome.Decision.Suites)
		case reconcile.DecisionUpdate:
			if conflictLosers[i] {
				log.Printf("[PUSH] dry-run: would skip %q (write conflict on #%d)",
					outcome.Proposal.Title, outcome.Decision.ExistingID)
				continue
			}
			log.Printf("[PUSH] dry-run: would update #%d with %q in suites %v",
				outcome.Decision.ExistingID, outcome.Proposal.Title, outcome.Decision.Suites)
		case reconcile.DecisionSkip:
			log.Printf("[PUSH] dry-run: skip %q (%s)", outcome.Proposal.Title, outcome.Decision.SkipReason)
		}
	}
}
