package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignOutput string

var assignCmd = &cobra.Command{
	Use:   "assign <task-id> [employee-id]",
	Short: "Assign a task to an employee",
	Long: `Commit a task to the named employee, or to the best-ranked employee when
no employee is given. The assignment is refused if the task is already
assigned or the employee lacks the free hours.

Use --output to export the resulting roster, including workloads, to a file.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := requireEngine()
		if err != nil {
			return err
		}

		var employeeID string
		if len(args) == 2 {
			employeeID = args[1]
		}

		a, err := engine.Assign(args[0], employeeID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		e, _ := engine.Employee(a.EmployeeID)
		mode := "manually"
		if a.Auto {
			mode = "automatically"
		}
		fmt.Fprintf(out, "Task %s %s assigned to %s (%s)\n", a.TaskID, mode, e.Name, e.ID)
		fmt.Fprintf(out, "  Probability: %.2f%%\n", a.Probability*100)
		fmt.Fprintf(out, "  Workload:    %g/%g hours\n", e.CurrentWorkload, e.MaxWorkloadHours)

		if assignOutput != "" {
			if err := exportSession(engine, assignOutput); err != nil {
				return err
			}
			fmt.Fprintf(out, "Roster written to %s\n", assignOutput)
		}
		return nil
	},
}

func init() {
	assignCmd.Flags().StringVarP(&assignOutput, "output", "o", "", "Write the updated roster to this file")
	rootCmd.AddCommand(assignCmd)
}
