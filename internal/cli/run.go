package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmatch/internal/core"
)

var runOutput string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recommend and auto-assign every unassigned task",
	Long: `Walk every unassigned task in ID order, print its recommendations and then
auto-assign it to the best-ranked employee. Finishes with the workload of
every employee.

Use --output to export the resulting roster to a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := requireEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		top := activeConfig().RecommendTopN

		tasks := engine.Tasks()
		pending := 0
		for _, task := range tasks {
			if task.IsAssigned() {
				continue
			}
			pending++

			recs, err := engine.Recommend(task.ID, top)
			if err != nil {
				return err
			}
			printRecommendations(out, task, recs)

			a, err := engine.Assign(task.ID, "")
			if err != nil {
				fmt.Fprintf(out, "Could not assign %s: %v\n", task.ID, err)
			} else {
				e, _ := engine.Employee(a.EmployeeID)
				fmt.Fprintf(out, "Assigned %s to %s (%.2f%%)\n", task.ID, e.Name, a.Probability*100)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, rule())
			fmt.Fprintln(out)
		}

		if pending == 0 {
			fmt.Fprintln(out, "No unassigned tasks.")
		}

		printWorkloads(out, engine)

		if runOutput != "" {
			if err := exportSession(engine, runOutput); err != nil {
				return err
			}
			fmt.Fprintf(out, "Roster written to %s\n", runOutput)
		}
		return nil
	},
}

func printWorkloads(w io.Writer, engine core.AssignmentEngine) {
	fmt.Fprintln(w, titleStyle.Render("FINAL WORKLOAD STATUS"))
	for _, e := range engine.Employees() {
		fmt.Fprintf(w, "%s: %g/%g hours (%.1f%% capacity)\n",
			e.Name, e.CurrentWorkload, e.MaxWorkloadHours, e.Utilization()*100)
		fmt.Fprintf(w, "  Assigned tasks: %v\n\n", e.AssignedTasks)
	}
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write the resulting roster to this file")
	rootCmd.AddCommand(runCmd)
}
