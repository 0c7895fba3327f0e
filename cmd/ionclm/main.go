package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/am"
	"github.com/teranos/ionclm/cmd/ionclm/commands"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ionclm",
	Short: "ionclm - ion column densities from the absorption-line literature",
	Long: `ionclm - ion column densities from the absorption-line literature.

ionclm fetches published column-density tables, normalizes them into
censored measurements (detections, lower and upper limits, blends) and
stores one column per ion per publication for each absorption system.

Available commands:
  am      - Manage ionclm configuration
  sources - List the publications ionclm can ingest
  ingest  - Fetch, normalize and store publications
  layout  - Normalize a table with a declarative layout file
  systems - List stored absorption systems
  show    - Show one system's columns
  db      - Manage the ionclm database

Examples:
  ionclm sources                 # List registered publications
  ionclm ingest --dry-run        # Parse everything, store nothing
  ionclm ingest Jen05 Mei07      # Ingest two publications
  ionclm show PG1634+706_z1.041  # Show a system's columns`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
			if cfg.Log.Verbosity > verbosity {
				verbosity = cfg.Log.Verbosity
			}
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.SourcesCmd)
	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.LayoutCmd)
	rootCmd.AddCommand(commands.SystemsCmd)
	rootCmd.AddCommand(commands.ShowCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		stop()
		os.Exit(1)
	}
}
