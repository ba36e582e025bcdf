package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmatch/internal/core"
	"github.com/valter-silva-au/taskmatch/pkg/models"
)

var recommendTop int

var recommendCmd = &cobra.Command{
	Use:   "recommend <task-id>",
	Short: "Rank candidate employees for a task",
	Long: `Rank every employee with enough free capacity for the task and show the
assignment probability alongside skill match, availability, current workload
and performance rating. Nothing is assigned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := requireEngine()
		if err != nil {
			return err
		}

		top := recommendTop
		if top <= 0 {
			top = activeConfig().RecommendTopN
		}

		task, ok := engine.Task(args[0])
		if !ok {
			return fmt.Errorf("task %s: %w", args[0], core.ErrTaskNotFound)
		}
		recs, err := engine.Recommend(task.ID, top)
		if err != nil {
			return err
		}

		printRecommendations(cmd.OutOrStdout(), task, recs)
		return nil
	},
}

func printRecommendations(w io.Writer, task *models.Task, recs []core.Recommendation) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Assignment recommendations for task '%s' (%s)", task.Name, task.ID)))
	fmt.Fprintln(w, rule())

	if len(recs) == 0 {
		fmt.Fprintln(w, "No employee has enough capacity for this task.")
		fmt.Fprintln(w)
		return
	}

	for _, rec := range recs {
		e := rec.Employee
		b := rec.Breakdown
		fmt.Fprintf(w, "%d. %s (%s)\n", rec.Rank, e.Name, e.ID)
		fmt.Fprintf(w, "   %-18s %6.2f%%\n", "Probability:", b.Probability*100)
		fmt.Fprintf(w, "   %-18s %6.2f%%\n", "Skill Match:", b.SkillSimilarity*100)
		fmt.Fprintf(w, "   %-18s %6.2f%%\n", "Availability:", b.Availability*100)
		fmt.Fprintf(w, "   %-18s %g/%g hours\n", "Current Workload:", e.CurrentWorkload, e.MaxWorkloadHours)
		fmt.Fprintf(w, "   %-18s %.2f\n", "Performance:", e.PerformanceRating)
		fmt.Fprintln(w)
	}
}

func init() {
	recommendCmd.Flags().IntVar(&recommendTop, "top", 0, "Number of candidates to show (default matching.recommend_top_n)")
	rootCmd.AddCommand(recommendCmd)
}
