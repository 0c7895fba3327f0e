package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/am"
	"github.com/teranos/ionclm/display"
	"github.com/teranos/ionclm/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage ionclm configuration",
	Long: `Manage ionclm configuration

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (IONCLM_* prefix)
3. Project config (am.toml in the working directory or a parent)
4. User config (~/.ionclm/am.toml)
5. System config (/etc/ionclm/am.toml)
6. Default values

Examples:
  ionclm am show                    # Show current configuration
  ionclm am show --format json      # Show configuration in JSON format
  ionclm am get cache.dir           # Get specific config value
  ionclm am set ingest.parallel 8   # Write a value to ~/.ionclm/am.toml
  ionclm am where                   # Show where each value came from
  ionclm am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a configuration value",
	Long:  "Write a value to the user config (~/.ionclm/am.toml), or to ./am.toml with --project. Lists are comma separated.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each configuration value is loaded from",
	RunE:  runAmWhere,
}

var (
	configFormat string
	setProject   bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amSetCmd.Flags().BoolVar(&setProject, "project", false, "Write ./am.toml instead of the user config")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	format, err := display.ParseFormat(configFormat)
	if err != nil {
		return err
	}
	if format == display.FormatTable {
		return errors.New("am show does not support table output")
	}
	if format != display.FormatJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "# ionclm configuration")
	}
	return display.Output(cmd.OutOrStdout(), format, cfg)
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.GetViper().IsSet(key) {
		return errors.WithHint(errors.Newf("configuration key %q not found", key), "run 'ionclm am where' to list keys")
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.FormatValue(am.Get(key)))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path := am.UserConfigPath()
	if setProject {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get working directory")
		}
		path = filepath.Join(wd, "am.toml")
	}
	if err := am.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	am.Reset()
	pterm.Success.Printfln("%s = %s (%s)", args[0], args[1], path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range am.Introspect() {
		data = append(data, []string{s.Key, am.FormatValue(s.Value), string(s.Source), s.SourcePath})
	}
	return display.RenderTable(cmd.OutOrStdout(), data)
}
