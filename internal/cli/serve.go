package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmatch/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assignment engine over HTTP",
	Long: `Start a JSON HTTP server exposing employees, tasks, match rankings,
assignment and the summary. Changes made over HTTP live in memory only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := requireEngine()
		if err != nil {
			return err
		}

		cfg := activeConfig()
		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddr
		}

		handler := httpapi.NewHandler(engine, httpapi.Options{
			TopN:                     cfg.TopN,
			DefaultMaxWorkloadHours:  cfg.DefaultMaxWorkloadHours,
			DefaultPerformanceRating: cfg.DefaultPerformanceRating,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		return httpapi.Serve(ctx, addr, handler, func(a net.Addr) {
			fmt.Fprintf(out, "Listening on %s\n", a)
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}
