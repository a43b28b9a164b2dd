package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aks2learn/Test-Sync-Pro/internal/ado"
	"github.com/aks2learn/Test-Sync-Pro/internal/ai"
	"github.com/aks2learn/Test-Sync-Pro/internal/config"
	"github.com/aks2learn/Test-Sync-Pro/internal/delta"
	"github.com/aks2learn/Test-Sync-Pro/internal/history"
	"github.com/aks2learn/Test-Sync-Pro/internal/pusher"
	"github.com/aks2learn/Test-Sync-Pro/internal/reconcile"
	"github.com/aks2learn/Test-Sync-Pro/internal/suites"
	"github.com/aks2learn/Test-Sync-Pro/internal/types"
)

var (
	syncStoryID int
	syncDryRun  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync test cases for a user story",
	Long: `Fetch the story and its linked Test Cases, detect uncovered
acceptance criteria, generate BDD test cases for the gaps, reconcile
them against the existing inventory, and apply the resulting Create
and Update decisions.

With --dry-run the full pipeline runs but nothing is written to the
tracker.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), syncStoryID, syncDryRun)
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncStoryID, "id", 0, "User Story work item ID (required)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Run the pipeline without writing to the tracker")
	syncCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(syncCmd)
}

func runSync(ctx context.Context, storyID int, dryRun bool) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	settings, err := config.FromEnv()
	if err != nil {
		return err
	}

	names := suites.DefaultNames()
	if settings.SuiteNamesPath != "" {
		names, err = suites.Load(settings.SuiteNamesPath)
		if err != nil {
			return err
		}
	}

	engineCfg, err := reconcile.ConfigFromEnv()
	if err != nil {
		return err
	}
	engine, err := reconcile.New(engineCfg, names)
	if err != nil {
		return err
	}

	client := ado.NewClient(settings.OrgURL, settings.Project, settings.PAT, settings.TestPlanID)

	fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Syncing test cases for story #%d ===", storyID)))

	// Phase 1: fetch
	fmt.Printf("%s\n", yellow("Fetching story and linked test cases..."))
	story, err := client.GetUserStory(ctx, storyID)
	if err != nil {
		return err
	}
	linked, err := client.GetLinkedTestCases(ctx, storyID)
	if err != nil {
		return err
	}
	if err := client.FillSuiteMemberships(ctx, linked); err != nil {
		return err
	}
	existing := make([]types.ExistingTestCase, 0, len(linked))
	for _, tc := range linked {
		existing = append(existing, *tc)
	}
	fmt.Printf("  Story: %s\n", story.Title)
	fmt.Printf("  Linked test cases: %d\n\n", len(existing))

	// Phase 2: delta analysis
	fmt.Printf("%s\n", yellow("Analyzing acceptance criteria coverage..."))
	criteria := delta.ExtractCriteria(story.AcceptanceCriteria)
	gaps, ratio := delta.FindGapsAt(criteria, existing, engineCfg.CoverageThreshold)
	fmt.Printf("  Criteria: %d, coverage: %.0f%%, gaps: %d\n\n", len(criteria), ratio*100, len(gaps))

	if len(gaps) == 0 {
		fmt.Printf("%s\n", green("All acceptance criteria are covered. Nothing to do."))
		emptyRun := &types.SyncResult{RunID: uuid.New().String(), StoryID: storyID}
		if err := recordRun(settings.HistoryDBPath, emptyRun, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record sync run: %v\n", err)
		}
		return nil
	}

	// Phase 3: generation
	fmt.Printf("%s\n", yellow("Generating test cases for gaps..."))
	generator, err := ai.NewGenerator(&ai.Config{APIKey: settings.AnthropicAPIKey})
	if err != nil {
		return err
	}
	proposals, err := generator.Generate(ctx, story, gaps)
	if err != nil {
		return err
	}
	fmt.Printf("  Generated %d proposals\n\n", len(proposals))

	// Phase 4: reconciliation
	fmt.Printf("%s\n", yellow("Reconciling proposals against existing inventory..."))
	result, err := engine.Reconcile(existing, proposals)
	if err != nil {
		return err
	}
	fmt.Printf("  Create: %d, Update: %d, Skip: %d\n",
		result.Stats.CreateCount, result.Stats.UpdateCount, result.Stats.SkipCount)
	for _, conflict := range result.Conflicts {
		fmt.Printf("  %s\n", yellow(fmt.Sprintf(
			"Warning: %d proposals target test case #%d", len(conflict.ProposalIndexes), conflict.ExistingID)))
	}
	fmt.Println()

	// Phase 5: push
	if dryRun {
		fmt.Printf("%s\n", yellow("Dry run: skipping tracker writes"))
	} else {
		fmt.Printf("%s\n", yellow("Applying decisions to the tracker..."))
	}
	p := pusher.New(client, pusher.Options{
		DryRun:      dryRun,
		FolderNames: names.All(),
	})
	syncResult, err := p.Apply(ctx, storyID, result)
	if syncResult != nil {
		// Journal the run even when the batch only partially applied,
		// so the written ids are not lost
		if recErr := recordRun(settings.HistoryDBPath, syncResult, dryRun); recErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record sync run: %v\n", recErr)
		}
	}
	if err != nil {
		if syncResult != nil && (len(syncResult.CreatedIDs) > 0 || len(syncResult.UpdatedIDs) > 0) {
			fmt.Fprintf(os.Stderr, "Partial run %s: created=%v updated=%v\n",
				syncResult.RunID, syncResult.CreatedIDs, syncResult.UpdatedIDs)
		}
		return err
	}

	fmt.Printf("\n%s\n", green(fmt.Sprintf("Done. run=%s created=%d updated=%d skipped=%d",
		syncResult.RunID, len(syncResult.CreatedIDs), len(syncResult.UpdatedIDs), syncResult.SkippedCount)))
	if dryRun {
		fmt.Printf("%s\n", gray("(dry run, nothing was written)"))
	}
	return nil
}

func recordRun(dbPath string, result *types.SyncResult, dryRun bool) error {
	journal, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer journal.Close()
	return journal.Record(result, dryRun)
}
