package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/db"
	"github.com/teranos/ionclm/display"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the ionclm database",
	Long: `Manage the ionclm database

Examples:
  ionclm db migrate          # Apply pending migrations
  ionclm db status           # Show applied migrations
  ionclm db runs --limit 5   # Show recent ingest runs`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE:  runDbMigrate,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runDbStatus,
}

var dbRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent ingest runs",
	RunE:  runDbRuns,
}

var runsLimitFlag int

func init() {
	dbRunsCmd.Flags().IntVar(&runsLimitFlag, "limit", 20, "Number of runs to show")

	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatusCmd)
	DbCmd.AddCommand(dbRunsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.GetDatabasePath(), logger.ComponentLogger("db"))
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(database, logger.ComponentLogger("db")); err != nil {
		return errors.Wrap(err, "migration failed")
	}
	pterm.Success.Printfln("Database %s is up to date", cfg.GetDatabasePath())
	return nil
}

func runDbStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.GetDatabasePath(), logger.ComponentLogger("db"))
	if err != nil {
		return err
	}
	defer database.Close()

	migrations, err := db.Status(database)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"Version", "File", "Applied"}}
	for _, m := range migrations {
		data = append(data, []string{m.Version, m.File, strconv.FormatBool(m.Applied)})
	}
	return display.RenderTable(cmd.OutOrStdout(), data)
}

func runDbRuns(cmd *cobra.Command, args []string) error {
	if runsLimitFlag <= 0 {
		return errors.Newf("--limit must be > 0, got %d", runsLimitFlag)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := store.ListRuns(cmd.Context(), runsLimitFlag)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"Run", "Started", "Sources", "Systems", "Ions", "Skipped", "OK"}}
	for _, r := range runs {
		data = append(data, []string{
			r.ID[:8],
			r.StartedAt.Local().Format(time.DateTime),
			strings.Join(r.Sources, ","),
			strconv.Itoa(r.Systems),
			strconv.Itoa(r.Ions),
			strconv.Itoa(r.Skipped),
			strconv.FormatBool(r.Success),
		})
	}
	return display.RenderTable(cmd.OutOrStdout(), data)
}
