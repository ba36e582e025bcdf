package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// rosterPath overrides roster.file from .matchconfig when set.
var rosterPath string

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "taskmatch",
	Short: "Match tasks to employees by skill, capacity and performance",
	Long: `taskmatch ranks employees for tasks using a weighted score over skill
match, availability, experience, performance and priority fit, and commits
assignments without ever exceeding an employee's workload capacity.

Employees and tasks are read from a YAML roster file. Assignment activity is
recorded to a JSONL event log that feeds the metrics and alerts commands.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "taskmatch %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "Roster file (overrides roster.file in .matchconfig)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
