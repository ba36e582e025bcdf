package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsNotify bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active capacity and assignment alerts",
	Long: `Evaluate alert conditions against the event log and display any triggered alerts.

Alerts fire for over-utilized employees, tasks no employee could take, and a
high number of rejected assignments. With --notify, triggered alerts are also
posted to the webhook configured as alerts.webhook_url.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (observability may be disabled)")
		}
		if alertsNotify && Notifier == nil {
			return fmt.Errorf("notifier not initialized (set alerts.webhook_url in .matchconfig)")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts.")
			return nil
		}

		fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Fprintf(out, "  %s %s\n", severityStyle(alert.Severity).Render("["+severity+"]"), alert.Message)
			fmt.Fprintf(out, "         triggered at %s\n\n", alert.TriggeredAt.Format("2006-01-02 15:04 UTC"))
		}

		if alertsNotify {
			if err := Notifier.Notify(alerts); err != nil {
				return fmt.Errorf("sending alert notification: %w", err)
			}
			fmt.Fprintf(out, "Sent %d alert(s) to webhook.\n", len(alerts))
		}

		return nil
	},
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Post triggered alerts to the configured webhook")
	rootCmd.AddCommand(alertsCmd)
}
