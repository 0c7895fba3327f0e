package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/display"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ixgest/lls"
	"github.com/teranos/ionclm/logger"
	"github.com/teranos/ionclm/storage"
)

// IngestCmd fetches, normalizes and stores publications
var IngestCmd = &cobra.Command{
	Use:   "ingest [source...]",
	Short: "Fetch, normalize and store publications",
	Long: `Fetch each publication's tables (cached under cache.dir), normalize them
into per-ion column stores and attach them to their absorption systems.

Without arguments the sources from ingest.sources are used, or every
registered source when that is empty.

Examples:
  ionclm ingest                     # Ingest everything configured
  ionclm ingest Jen05 Tri05         # Ingest two publications
  ionclm ingest --dry-run -v        # Parse and show, store nothing
  ionclm ingest --offline           # Use only cached tables`,
	RunE: runIngest,
}

func init() {
	IngestCmd.Flags().Bool("dry-run", false, "Parse without writing to the database")
	IngestCmd.Flags().Bool("offline", false, "Never download; fail on a cache miss")
	IngestCmd.Flags().Bool("json", false, "Output the run summary as JSON")
}

func runIngest(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	offline, _ := cmd.Flags().GetBool("offline")
	useJSON, _ := cmd.Flags().GetBool("json")
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sources, err := resolveSources(args, cfg.Ingest.Sources)
	if err != nil {
		return err
	}

	runID := storage.NewRunID()
	ctx := logger.WithComponent(logger.WithRunID(cmd.Context(), runID), "ingest")

	fetcher := newFetcher(cfg, offline)

	var (
		store     *storage.SQLStore
		collector = &lls.Collector{}
		sinkFor   lls.SinkFactory
	)
	if dryRun {
		sinkFor = func(context.Context, lls.SystemInfo) (clm.Sink, error) { return collector, nil }
	} else {
		var closeDB func() error
		store, closeDB, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		sinkFor = store.SinkFor
	}

	if !useJSON {
		pterm.DefaultHeader.WithFullWidth().Printf("Ingest - %s", plural(len(sources), "source"))
		if dryRun {
			pterm.Warning.Println("DRY RUN MODE: nothing will be stored")
		}
		pterm.Info.Printfln("Cache: %s", fetcher.CacheDir)
		pterm.Info.Printfln("Run: %s", runID)
	}

	var spinner *pterm.SpinnerPrinter
	if !useJSON {
		spinner, _ = pterm.DefaultSpinner.Start("Fetching and normalizing tables...")
	}
	processor := lls.NewProcessor(fetcher, sinkFor, dryRun, cfg.GetParallel(), logger.ComponentLogger("lls"))
	result, err := processor.Process(ctx, sources)
	if spinner != nil {
		spinner.Stop()
	}

	if store != nil {
		if rerr := store.RecordRun(ctx, storage.NewRun(runID, sourceNames(sources), result)); rerr != nil {
			logger.LoggerFromContext(ctx).Warnw("Failed to record run", logger.FieldError, rerr)
		}
	}
	if err != nil {
		if useJSON {
			display.Output(cmd.OutOrStdout(), display.FormatJSON, result)
		}
		return errors.Wrap(err, "ingest failed")
	}

	if useJSON {
		return display.Output(cmd.OutOrStdout(), display.FormatJSON, result)
	}

	pterm.Success.Printfln("Ingest completed in %s", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	pterm.Printfln("  Systems stored:   %d", result.Systems)
	pterm.Printfln("  Systems excluded: %d", result.Excluded)
	pterm.Printfln("  Ion columns:      %d", result.Ions)
	pterm.Printfln("  Rows skipped:     %d", result.Skipped)

	if logger.ShouldOutput(verbosity, logger.OutputSkips) {
		renderSkips(cmd, result.Batches)
	}
	if dryRun && verbosity > 0 {
		for _, a := range collector.Attachments() {
			pterm.Println()
			pterm.Info.Println(a.Citation)
			display.RenderTable(cmd.OutOrStdout(), display.StoreTable(a.Store))
		}
	}
	if dryRun {
		pterm.Info.Println("Use 'ionclm ingest' without --dry-run to store the columns")
	} else {
		pterm.Info.Println("Next: 'ionclm systems' to list stored systems")
	}
	return nil
}

func renderSkips(cmd *cobra.Command, batches []lls.Batch) {
	data := skipsTable(batches)
	if len(data) == 1 {
		return
	}
	pterm.Println()
	pterm.Info.Println("Skipped rows and excluded systems:")
	display.RenderTable(cmd.OutOrStdout(), data)
}

func skipsTable(batches []lls.Batch) pterm.TableData {
	data := pterm.TableData{{"Source", "System", "Row", "Reason"}}
	for _, b := range batches {
		for _, r := range b.Results {
			if r.Excluded {
				data = append(data, []string{b.Source.Name(), r.System.Name, "", r.Reason})
			}
			for _, s := range r.Skipped {
				data = append(data, []string{b.Source.Name(), r.System.Name, strconv.Itoa(s.Index), s.Reason})
			}
		}
	}
	return data
}
