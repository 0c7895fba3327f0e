package lls

import (
	"strconv"
	"strings"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/internal/util"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// Jenkins05 is PHL 1811 from Jenkins et al. (2005), parsed from the
// tab-separated Table 1 published with the paper. One row per transition;
// rows that start with a wavelength continue the ion above. Detections carry
// no error in the table, so per-ion uncertainties are supplied from
// jenkinsSigma.
type Jenkins05 struct{}

func (Jenkins05) Name() string     { return "Jen05" }
func (Jenkins05) Citation() string { return "Jenkins, E. et al. 2005, ApJ, 623, 767" }

const jenkinsTable = "jenkins2005.tb1.ascii"

func (Jenkins05) Tables() []fetch.Ref {
	return []fetch.Ref{{
		Name: jenkinsTable,
		URL:  "http://iopscience.iop.org/0004-637X/623/2/767/fulltext/61520.tb1.txt",
	}}
}

// Transitions excluded from the table: a C II line and the C II* lines.
var jenkinsSkip = []string{"1442.0", "1443.7", "1120.9"}

var jenkinsSigma = map[string]float64{
	"C IV": 0.4, "N II": 0.4, "Si II": 0.05, "Si IV": 0.25,
	"S II": 0.2, "Fe II": 0.12, "H I": 0.05, "S III": 0.06,
}

// JenkinsErrata corrects the parsed table. The O I column is the one given
// in the text; N I is blended and only an upper limit.
var JenkinsErrata = []clm.Patch{
	{Ion: ion.MustLookup("O I"), LogN: util.Ptr(14.47), Sigma: util.Ptr(0.05), Reason: "O I column from text"},
	{Ion: ion.MustLookup("N I"), Flag: util.Ptr(clm.UpperLimit), Reason: "N I treated as upper limit"},
}

func (j Jenkins05) Parse(tables Tables) ([]Result, error) {
	table, err := tables.Split(jenkinsTable, ixgest.DelimTab)
	if err != nil {
		return nil, err
	}
	rows, skipped, err := jenkinsRows(table)
	if err != nil {
		return nil, err
	}
	// A later transition of the same ion replaces the earlier column.
	store, err := ixgest.LastRows(rows)
	if err != nil {
		return nil, err
	}
	if store, err = store.Apply(JenkinsErrata); err != nil {
		return nil, err
	}
	return []Result{{
		System: SystemInfo{
			Name:     "PHL1811_z0.081",
			RA:       "21:55:01.5152",
			Dec:      "-09:22:24.688",
			Zem:      0.192,
			Zabs:     0.080923,
			VLim:     [2]float64{-100, 100},
			NHI:      17.98,
			SigNHI:   [2]float64{0.05, 0.05},
			MH:       mh(-0.19),
			Ref:      j.Name(),
			Citation: j.Citation(),
		},
		Store:   store,
		Skipped: skipped,
	}}, nil
}

func jenkinsRows(table ixgest.Table) ([]clm.Row, []ixgest.Skip, error) {
	var (
		rows    []clm.Row
		skipped []ixgest.Skip
		current ion.ID
		label   string
	)
	for i, row := range table {
		if ixgest.Blank(row) {
			continue
		}
		// A leading wavelength means the ion cell is absent.
		off := 0
		first := ixgest.Field(row, 0)
		continuation := first != "" && (first[0] == '1' || first[0] == '2')
		if continuation {
			off = -1
		}

		line := ixgest.Field(row, 1+off)
		if hasAnyPrefix(line, jenkinsSkip) {
			skipped = append(skipped, ixgest.Skip{Index: i, Reason: "excluded transition " + line})
			continue
		}
		if ixgest.Field(row, 2+off) == "" {
			skipped = append(skipped, ixgest.Skip{Index: i, Reason: "no wavelength"})
			continue
		}

		if !continuation && first != "" {
			id, err := ixgest.LookupIon(i, row, first)
			if err != nil {
				return nil, nil, err
			}
			current, label = id, first
		}
		if label == "" {
			return nil, nil, ixgest.RowError(i, row, nil, "transition before any ion")
		}

		cell := ixgest.Field(row, 5+off)
		if cell == "" || cell == `\ldots` {
			skipped = append(skipped, ixgest.Skip{Index: i, Reason: "no value for " + current.Label()})
			continue
		}
		m, err := jenkinsColumn(cell, current)
		if err != nil {
			return nil, nil, ixgest.RowError(i, row, err, "bad column for %s", current.Label())
		}
		rows = append(rows, clm.Row{Ion: current, Measurement: m})
	}
	return rows, skipped, nil
}

// jenkinsColumn reads one column cell:
//
//	\gtrsim 14.2   lower limit
//	<12.9          upper limit
//	13.59...       detection, first five characters, sigma from jenkinsSigma
func jenkinsColumn(cell string, id ion.ID) (clm.Measurement, error) {
	switch cell[0] {
	case '\\':
		pos := strings.IndexByte(cell, ' ')
		if pos < 0 {
			return clm.Measurement{}, errors.Newf("limit %q has no value", cell)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell[pos+1:]), 64)
		if err != nil {
			return clm.Measurement{}, errors.Wrap(err, "lower limit")
		}
		return clm.NewLowerLimit(v), nil
	case '<':
		v, err := strconv.ParseFloat(strings.TrimSpace(cell[1:]), 64)
		if err != nil {
			return clm.Measurement{}, errors.Wrap(err, "upper limit")
		}
		return clm.NewUpperLimit(v), nil
	case '1':
		if len(cell) > 5 {
			cell = cell[:5]
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return clm.Measurement{}, errors.Wrap(err, "detection")
		}
		// Ions without a listed error keep sigma 0.
		return clm.NewDetection(v, jenkinsSigma[id.Label()]), nil
	}
	return clm.Measurement{}, errors.Newf("unexpected leading character %q", cell[0])
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
