// testsync reconciles AI-generated BDD test cases against the test
// case work items already linked to an Azure DevOps user story.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "testsync",
	Short: "Sync AI-generated BDD test cases into Azure DevOps",
	Long: `testsync analyzes a User Story's acceptance criteria, finds the
criteria its linked Test Cases do not yet cover, generates BDD test
cases for the gaps, and reconciles them against the existing inventory
before writing anything back.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// configureLogging routes the internal packages' prefixed debug
// logging ([RECONCILE], [ADO], [PUSH]). Without --verbose only the
// phase summaries are printed.
func configureLogging(verbose bool) {
	if verbose {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
