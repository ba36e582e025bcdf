package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmatch/internal/core"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display workload and task summary",
	Long: `Display a summary of the roster: task counts, per-employee workload and
utilization, skill and priority distributions, and the most recent tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := requireEngine()
		if err != nil {
			return err
		}

		s := core.Summarize(engine)
		out := cmd.OutOrStdout()

		if statusJSON {
			return writeJSON(out, s)
		}

		if s.TotalEmployees == 0 && s.TotalTasks == 0 {
			fmt.Fprintln(out, "Roster is empty.")
			return nil
		}

		fmt.Fprintln(out, titleStyle.Render("taskmatch status"))
		fmt.Fprintln(out)

		counts := fmt.Sprintf("%s %d   %s %d   %s %d   %s %d   %s %d",
			headerStyle.Render("Employees"), s.TotalEmployees,
			headerStyle.Render("Tasks"), s.TotalTasks,
			headerStyle.Render("Assigned"), s.AssignedTasks,
			headerStyle.Render("Unassigned"), s.UnassignedTasks,
			headerStyle.Render("Completed"), s.CompletedTasks)
		fmt.Fprintln(out, panelStyle.Render(counts))
		fmt.Fprintln(out)

		fmt.Fprintln(out, renderWorkloads(s))
		fmt.Fprintln(out)
		fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Top,
			renderSkills(s), "  ", renderPriorities(s)))
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderRecent(s))
		return nil
	},
}

func renderWorkloads(s core.Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Workload") + "\n")
	for _, w := range s.Workloads {
		fmt.Fprintf(&b, "%-6s %-20s %s  %g/%gh  perf %.2f\n",
			w.ID, truncate(w.Name, 20), utilizationBar(w.UtilizationPercent),
			w.CurrentWorkload, w.MaxWorkloadHours, w.PerformanceRating)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderSkills(s core.Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Skills") + "\n")
	names := s.SortedSkillNames()
	if len(names) == 0 {
		b.WriteString(mutedStyle.Render("none"))
	}
	for _, name := range names {
		fmt.Fprintf(&b, "%-20s %d\n", truncate(name, 20), s.SkillDistribution[name])
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderPriorities(s core.Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Priorities") + "\n")
	for _, p := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		fmt.Fprintf(&b, "%-10s %d\n", p, s.PriorityDistribution[p])
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderRecent(s core.Summary) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent tasks") + "\n")
	if len(s.RecentTasks) == 0 {
		b.WriteString(mutedStyle.Render("none"))
	}
	for _, t := range s.RecentTasks {
		assignee := t.AssignedTo
		if assignee == "" {
			assignee = mutedStyle.Render("unassigned")
		}
		done := ""
		if t.IsCompleted {
			done = " (done)"
		}
		fmt.Fprintf(&b, "%-6s %-24s %-8s %s%s\n", t.ID, truncate(t.Name, 24), t.Priority, assignee, done)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output the summary as JSON")
	rootCmd.AddCommand(statusCmd)
}
