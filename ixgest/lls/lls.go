// Package lls holds the per-publication adapters for Lyman limit system
// literature: each Source knows which table files a paper published and how
// to turn them into one ion record store per absorption system.
package lls

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// SystemInfo is the metadata published alongside an absorption system.
// Coordinates are kept as the published sexagesimal or degree strings.
type SystemInfo struct {
	Name     string     `json:"name" yaml:"name" toml:"name"`
	RA       string     `json:"ra" yaml:"ra" toml:"ra"`
	Dec      string     `json:"dec" yaml:"dec" toml:"dec"`
	Zem      float64    `json:"zem" yaml:"zem" toml:"zem"`
	Zabs     float64    `json:"zabs" yaml:"zabs" toml:"zabs"`
	VLim     [2]float64 `json:"vlim" yaml:"vlim" toml:"vlim"` // km/s
	NHI      float64    `json:"nhi" yaml:"nhi" toml:"nhi"`
	SigNHI   [2]float64 `json:"sig_nhi" yaml:"sig_nhi" toml:"sig_nhi"`
	MH       *float64   `json:"mh,omitempty" yaml:"mh,omitempty" toml:"mh,omitempty"`
	Ref      string     `json:"ref" yaml:"ref" toml:"ref"`
	Citation string     `json:"citation" yaml:"citation" toml:"citation"`
}

// Subsystem is one velocity sub-system that was merged into the total.
type Subsystem struct {
	Label string
	Store *clm.Store
}

// Result is one absorption system produced by a source.
type Result struct {
	System     SystemInfo
	Store      *clm.Store
	Subsystems []Subsystem
	Skipped    []ixgest.Skip

	// Excluded systems are parsed but fall outside the paper's sample as
	// used here (e.g. DLAs in an SLLS paper). Sinks do not receive them.
	Excluded bool
	Reason   string
}

// Tables maps a fetch.Ref name to the raw text of that table.
type Tables map[string]string

// Split tokenizes the named table.
func (t Tables) Split(name string, delim ixgest.Delimiter) (ixgest.Table, error) {
	text, ok := t[name]
	if !ok {
		return nil, errors.NewNotFoundError("table %s was not loaded", name)
	}
	table, err := ixgest.SplitLines(text, delim)
	if err != nil {
		return nil, errors.Wrapf(err, "table %s", name)
	}
	return table, nil
}

// Source is one publication.
type Source interface {
	// Name is the short reference, e.g. "Jen05".
	Name() string
	Citation() string
	// Tables lists the files Parse needs. Sources transcribed by hand
	// return nil.
	Tables() []fetch.Ref
	Parse(tables Tables) ([]Result, error)
}

// Loader fetches table text; *fetch.Fetcher satisfies it.
type Loader interface {
	ReadAll(ctx context.Context, refs []fetch.Ref) (map[string]string, error)
}

// Registry lists every known source in publication order.
var Registry = []Source{
	Zonak04{},
	Jenkins05{},
	Tripp05{},
	Peroux06a{},
	Peroux06b{},
	Meiring06{},
	Meiring07{},
	Nestor08{},
}

// Lookup finds a registered source by name, ignoring case.
func Lookup(name string) (Source, error) {
	for _, s := range Registry {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	return nil, errors.WithHintf(errors.NewNotFoundError("unknown source %q", name),
		"known sources: %s", strings.Join(Names(), ", "))
}

// Names returns the registered source names.
func Names() []string {
	names := make([]string, len(Registry))
	for i, s := range Registry {
		names[i] = s.Name()
	}
	return names
}

// Select resolves names to sources. No names selects the whole registry.
func Select(names []string) ([]Source, error) {
	if len(names) == 0 {
		out := make([]Source, len(Registry))
		copy(out, Registry)
		return out, nil
	}
	out := make([]Source, 0, len(names))
	seen := make(map[string]bool)
	for _, n := range names {
		s, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		if !seen[s.Name()] {
			seen[s.Name()] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// Batch is everything one source produced.
type Batch struct {
	Source  Source
	Results []Result
}

// ParseAll loads and parses sources with at most parallel in flight.
// Batches come back in the order of sources; the first failure cancels the
// rest and is returned wrapped with the source name.
func ParseAll(ctx context.Context, loader Loader, sources []Source, parallel int) ([]Batch, error) {
	if parallel < 1 {
		parallel = 1
	}
	batches := make([]Batch, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, src := range sources {
		g.Go(func() error {
			tables := Tables{}
			if refs := src.Tables(); len(refs) > 0 {
				text, err := loader.ReadAll(ctx, refs)
				if err != nil {
					return errors.Wrapf(err, "source %s", src.Name())
				}
				tables = text
			}
			results, err := src.Parse(tables)
			if err != nil {
				return errors.Wrapf(err, "source %s", src.Name())
			}
			batches[i] = Batch{Source: src, Results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// SortResults orders results by system name.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].System.Name < results[j].System.Name
	})
}

func mh(v float64) *float64 {
	return &v
}
