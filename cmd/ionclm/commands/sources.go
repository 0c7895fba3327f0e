package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ionclm/display"
	"github.com/teranos/ionclm/ixgest/lls"
)

// SourcesCmd lists the registered publications
var SourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the publications ionclm can ingest",
	RunE: func(cmd *cobra.Command, args []string) error {
		return display.RenderTable(cmd.OutOrStdout(), sourcesTable(lls.Registry))
	},
}

func sourcesTable(sources []lls.Source) pterm.TableData {
	data := pterm.TableData{{"Key", "Citation", "Tables"}}
	for _, s := range sources {
		var names []string
		for _, ref := range s.Tables() {
			names = append(names, ref.Name)
		}
		tables := "built in"
		if len(names) > 0 {
			tables = strings.Join(names, ", ")
		}
		data = append(data, []string{s.Name(), s.Citation(), tables})
	}
	return data
}

// resolveSources picks sources from args, falling back to configured ones.
func resolveSources(args, configured []string) ([]lls.Source, error) {
	if len(args) > 0 {
		return lls.Select(args)
	}
	return lls.Select(configured)
}

func sourceNames(sources []lls.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return names
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
