package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/display"
)

// SystemsCmd lists stored absorption systems
var SystemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List stored absorption systems",
	RunE:  runSystems,
}

// ShowCmd shows one system
var ShowCmd = &cobra.Command{
	Use:   "show <system>",
	Short: "Show one system's columns",
	Long: `Show a stored system's metadata and, for each publication attached to it,
every ion's column density with its flag.

Examples:
  ionclm show PG1634+706_z1.041
  ionclm show Q0826-2230_z0.911 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	SystemsCmd.Flags().String("format", "table", "Output format: table, json, yaml, toml")
	ShowCmd.Flags().String("format", "table", "Output format: table, json, yaml, toml")
}

func runSystems(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := display.ParseFormat(formatFlag)
	if err != nil {
		return err
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

	systems, err := store.ListSystems(cmd.Context())
	if err != nil {
		return err
	}
	if format != display.FormatTable {
		return display.Output(cmd.OutOrStdout(), format, map[string]interface{}{"systems": systems})
	}
	return display.RenderTable(cmd.OutOrStdout(), display.SystemsTable(systems))
}

func runShow(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := display.ParseFormat(formatFlag)
	if err != nil {
		return err
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

	system, err := store.LoadSystem(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if format != display.FormatTable {
		return display.Output(cmd.OutOrStdout(), format, display.NewSystemView(system))
	}
	return display.RenderSystem(cmd.OutOrStdout(), system)
}
