package lls

import (
	"strings"
	"unicode"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// Tripp05 is the Virgo LLS toward PG 1216+069 from Tripp et al. (2005).
// Table 3 holds VPFIT components: the first row of an ion names it, the
// following rows are further components and are summed into it. Table 2
// supplies upper limits for ions absent from Table 3.
type Tripp05 struct{}

func (Tripp05) Name() string     { return "Tri05" }
func (Tripp05) Citation() string { return "Tripp, T. et al. 2005, ApJ, 619, 714" }

const (
	trippVPFIT  = "tripp2005.tb3.ascii"
	trippLimits = "tripp2005.tb2.ascii"

	// Table 2 opens with a header block.
	trippLimitsHeader = 10
)

func (Tripp05) Tables() []fetch.Ref {
	return []fetch.Ref{
		{Name: trippVPFIT, URL: "http://iopscience.iop.org/0004-637X/619/2/714/fulltext/60797.tb3.txt"},
		{Name: trippLimits, URL: "http://iopscience.iop.org/0004-637X/619/2/714/fulltext/60797.tb2.txt"},
	}
}

func (t Tripp05) Parse(tables Tables) ([]Result, error) {
	vp, err := tables.Split(trippVPFIT, ixgest.DelimTab)
	if err != nil {
		return nil, err
	}
	components, err := trippComponents(vp)
	if err != nil {
		return nil, errors.Wrap(err, trippVPFIT)
	}

	lim, err := tables.Split(trippLimits, ixgest.DelimTab)
	if err != nil {
		return nil, err
	}
	limits, err := trippUpperLimits(lim, components)
	if err != nil {
		return nil, errors.Wrap(err, trippLimits)
	}

	store, err := clm.Merge(components, limits)
	if err != nil {
		return nil, err
	}
	return []Result{{
		System: SystemInfo{
			Name:     "PG1216+069_z0.006",
			RA:       "12:19:20.9320",
			Dec:      "+06:38:38.476",
			Zem:      0.3313,
			Zabs:     0.00632,
			VLim:     [2]float64{-100, 100},
			NHI:      19.32,
			SigNHI:   [2]float64{0.03, 0.03},
			MH:       mh(-1.6),
			Ref:      t.Name(),
			Citation: t.Citation(),
		},
		Store: store,
	}}, nil
}

func trippComponents(table ixgest.Table) (*clm.Store, error) {
	b := clm.NewBuilder()
	var current ion.ID
	started := false
	for i, row := range table {
		if ixgest.Blank(row) {
			continue
		}
		if first := ixgest.Field(row, 0); first != "" {
			label := beforeWavelength(first)
			id, err := ixgest.LookupIon(i, row, label)
			if err != nil {
				return nil, err
			}
			if b.Has(id) {
				return nil, ixgest.RowError(i, row, &clm.DuplicateIonError{Ion: id}, "ion listed twice")
			}
			current, started = id, true
		} else if !started {
			return nil, ixgest.RowError(i, row, nil, "component before any ion")
		}

		v, sigma, err := ixgest.ParseValueSigma(ixgest.Field(row, 3))
		if err != nil {
			return nil, ixgest.RowError(i, row, err, "bad column for %s", current.Label())
		}
		if err := b.Accumulate(clm.Row{Ion: current, Measurement: clm.NewDetection(v, sigma)}); err != nil {
			return nil, ixgest.RowError(i, row, err, "accumulate %s", current.Label())
		}
	}
	return b.Build(), nil
}

func trippUpperLimits(table ixgest.Table, have *clm.Store) (*clm.Store, error) {
	var rows []clm.Row
	for i, row := range table {
		if i < trippLimitsHeader {
			continue
		}
		label := ixgest.Field(row, 0)
		if label == "" {
			continue
		}
		id, err := ixgest.LookupIon(i, row, label)
		if err != nil {
			return nil, err
		}
		if have.Has(id) {
			continue
		}
		cell := ixgest.Field(row, 4)
		if !strings.HasPrefix(cell, "<") {
			return nil, ixgest.RowError(i, row, nil, "expected an upper limit for %s", id.Label())
		}
		m, err := ixgest.ClassifyTokens([]string{cell})
		if err != nil {
			return nil, ixgest.RowError(i, row, err, "bad limit for %s", id.Label())
		}
		rows = append(rows, clm.Row{Ion: id, Measurement: m})
	}
	return clm.FromRows(rows)
}

// beforeWavelength strips the rest wavelength from labels like "O VI 1031.9".
func beforeWavelength(s string) string {
	if i := strings.IndexFunc(s, unicode.IsDigit); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
