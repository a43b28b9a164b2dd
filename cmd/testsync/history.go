package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aks2learn/Test-Sync-Pro/internal/config"
	"github.com/aks2learn/Test-Sync-Pro/internal/history"
)

var (
	historyStoryID int
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(historyStoryID, historyLimit)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyStoryID, "id", 0, "Filter by User Story ID (0 = all stories)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(storyID, limit int) error {
	settings := config.DefaultSettings()
	// Only the journal path matters here; tracker settings may be unset
	if path := settingsHistoryPath(); path != "" {
		settings.HistoryDBPath = path
	}

	journal, err := history.Open(settings.HistoryDBPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	entries, err := journal.List(storyID, limit)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n\n", cyan("=== Sync history ==="))
	if len(entries) == 0 {
		fmt.Printf("  %s\n", gray("No recorded runs"))
		return nil
	}

	for _, e := range entries {
		mode := ""
		if e.DryRun {
			mode = gray(" (dry run)")
		}
		fmt.Printf("  %s  story #%d  created=%d updated=%d skipped=%d%s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04"),
			e.StoryID, len(e.CreatedIDs), len(e.UpdatedIDs), e.SkippedCount, mode)
		fmt.Printf("    %s\n", gray("run "+shortRunID(e.RunID)))
	}
	return nil
}

func settingsHistoryPath() string {
	// TSP_HISTORY_DB is read directly so history works without the
	// full tracker configuration
	return strings.TrimSpace(os.Getenv("TSP_HISTORY_DB"))
}

func shortRunID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
