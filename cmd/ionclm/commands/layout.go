package commands

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/display"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
	"github.com/teranos/ionclm/ixgest/lls"
	"github.com/teranos/ionclm/logger"
)

// LayoutCmd normalizes one table with a declarative layout
var LayoutCmd = &cobra.Command{
	Use:   "layout <layout.toml> <table>",
	Short: "Normalize a table with a declarative layout file",
	Long: `Normalize a table with a layout file describing its delimiter, columns,
skipped rows, repeated-ion policy, default uncertainties and errata.

The table is a local file or a URL; URLs are cached under cache.dir.
With --system the result is stored under the layout's name as citation.

Examples:
  ionclm layout jenkins.toml tb1.ascii
  ionclm layout mine.toml https://example.org/table2.txt --format json
  ionclm layout mine.toml tb2.txt --system Q0826-2230_z0.911
  ionclm layout validate              # Check every file in ingest.layouts`,
	Args: cobra.ExactArgs(2),
	RunE: runLayout,
}

var layoutValidateCmd = &cobra.Command{
	Use:   "validate [layout.toml...]",
	Short: "Validate layout files (default: ingest.layouts)",
	RunE:  runLayoutValidate,
}

func init() {
	LayoutCmd.Flags().String("format", "table", "Output format: table, json, yaml, toml")
	LayoutCmd.Flags().String("system", "", "Store the result on this system")
	LayoutCmd.AddCommand(layoutValidateCmd)
}

// readTable returns the text of a local file or a fetched URL.
func readTable(ctx context.Context, f *fetch.Fetcher, src string) (string, error) {
	if fetch.IsRemote(src) {
		return f.Read(ctx, fetch.Ref{Name: filepath.Base(src), URL: src})
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", src)
	}
	return string(data), nil
}

// normalizeWithLayout loads a layout and applies it to text.
func normalizeWithLayout(layoutPath, text string) (*ixgest.Layout, *ixgest.Normalized, error) {
	layout, err := ixgest.LoadLayout(layoutPath)
	if err != nil {
		return nil, nil, err
	}
	table, err := layout.Split(text)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "split with %s", layout.Name)
	}
	res, err := layout.Normalize(table)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "normalize with %s", layout.Name)
	}
	return layout, res, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	system, _ := cmd.Flags().GetString("system")
	format, err := display.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	fetcher := newFetcher(cfg, false)
	text, err := readTable(ctx, fetcher, args[1])
	if err != nil {
		return err
	}
	layout, res, err := normalizeWithLayout(args[0], text)
	if err != nil {
		return err
	}

	if system != "" {
		store, closeDB, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		info := lls.SystemInfo{Name: system, Ref: layout.Name, Citation: layout.Citation}
		if existing, err := store.LoadSystem(ctx, system); err == nil {
			info = existing.Info
		} else if !errors.IsNotFoundError(err) {
			return err
		}
		if err := store.Attach(ctx, info, layout.Name, res.Store); err != nil {
			return err
		}
		logger.LoggerFromContext(ctx).Infow("Layout result stored",
			logger.FieldSystem, system,
			logger.FieldCitation, layout.Name,
			logger.FieldIons, res.Store.Len())
	}

	if format != display.FormatTable {
		return display.Output(cmd.OutOrStdout(), format, display.CitationView{Key: layout.Name, Ions: display.NewIonViews(res.Store)})
	}

	pterm.Info.Printfln("%s: %s, %d skipped", layout.Name, plural(res.Store.Len(), "ion"), len(res.Skipped))
	if err := display.RenderTable(cmd.OutOrStdout(), display.StoreTable(res.Store)); err != nil {
		return err
	}
	if len(res.Skipped) > 0 {
		data := pterm.TableData{{"Row", "Reason"}}
		for _, s := range res.Skipped {
			data = append(data, []string{strconv.Itoa(s.Index), s.Reason})
		}
		return display.RenderTable(cmd.OutOrStdout(), data)
	}
	return nil
}

func runLayoutValidate(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		paths = cfg.Ingest.Layouts
	}
	if len(paths) == 0 {
		return errors.WithHint(errors.New("no layout files given"), "pass files or set ingest.layouts")
	}
	var failed int
	for _, p := range paths {
		if _, err := ixgest.LoadLayout(p); err != nil {
			failed++
			pterm.Error.Printfln("%s: %v", p, err)
			continue
		}
		pterm.Success.Printfln("%s", p)
	}
	if failed > 0 {
		return errors.Newf("%s invalid", plural(failed, "layout"))
	}
	return nil
}
