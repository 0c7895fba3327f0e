package lls

import (
	"math"
	"strconv"
	"strings"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/column"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// Peroux06a is SDSS J0134+0051 from Peroux et al. (2006a). Table 2 gives
// linear component columns and errors, transcribed here; detections are the
// component sums, non-detections are 2-sigma limits on the summed error.
// Mn II is left out: it is listed both as a detection and as a limit.
type Peroux06a struct{}

func (Peroux06a) Name() string        { return "Prx06a" }
func (Peroux06a) Citation() string    { return "Peroux, C. et al. 2006a, MNRAS, 372, 369" }
func (Peroux06a) Tables() []fetch.Ref { return nil }

type linearComponents struct {
	ion    string
	scale  float64
	n      []float64
	sigmas []float64
}

var (
	peroux06aDetections = []linearComponents{
		{"Mg I", 1e10, []float64{5.56, 12.6, 13.7, 23.5, 61.4, 39.8, 6, 9.14}, []float64{2.32, 3.1, 3.68, 4.13, 8.02, 6.65, 3.37, 2.82}},
		{"Fe II", 1e11, []float64{8.17, 4.28, 32.1, 125, 710, 301, 893, 600, 263, 65.7}, []float64{2.63, 1.40, 2.37, 8.6, 53.2, 28.4, 73.5, 61.7, 14.0, 2.95}},
	}
	peroux06aLimits = []linearComponents{
		{"Zn II", 1e11, nil, []float64{3.72, 1.84, 2.36, 3.83}},
		{"Cr II", 1e11, nil, []float64{19.4, 9.79}},
	}
)

func (p Peroux06a) Parse(Tables) ([]Result, error) {
	b := clm.NewBuilder()
	for _, d := range peroux06aDetections {
		id, err := ion.Lookup(d.ion)
		if err != nil {
			return nil, err
		}
		v, err := column.FromLinear(column.SumLinear(scaled(d.n, d.scale)), column.QuadratureSum(scaled(d.sigmas, d.scale)))
		if err != nil {
			return nil, errors.Wrapf(err, "sum %s", d.ion)
		}
		if err := b.Add(clm.Row{Ion: id, Measurement: clm.NewDetection(v.LogN, v.Sigma)}); err != nil {
			return nil, err
		}
	}

	if err := b.Add(clm.Row{Ion: ion.MustLookup("Mg II"), Measurement: clm.NewLowerLimit(math.Log10(5e13))}); err != nil {
		return nil, err
	}

	for _, l := range peroux06aLimits {
		id, err := ion.Lookup(l.ion)
		if err != nil {
			return nil, err
		}
		ceiling, err := column.ToLog(2 * column.QuadratureSum(scaled(l.sigmas, l.scale)))
		if err != nil {
			return nil, errors.Wrapf(err, "limit %s", l.ion)
		}
		if err := b.Add(clm.Row{Ion: id, Measurement: clm.NewUpperLimit(ceiling)}); err != nil {
			return nil, err
		}
	}

	return []Result{{
		System: SystemInfo{
			Name:     "SDSSJ0134+0051_z0.842",
			RA:       "01:34:05.75",
			Dec:      "+00:51:09.4",
			Zem:      1.522,
			Zabs:     0.842,
			VLim:     [2]float64{-150, 150},
			NHI:      19.93,
			SigNHI:   [2]float64{0.15, 0.15},
			Ref:      p.Name(),
			Citation: p.Citation(),
		},
		Store: b.Build(),
	}}, nil
}

func scaled(vs []float64, scale float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v * scale
	}
	return out
}

// Peroux06b is SDSS J1323-0021 from Peroux et al. (2006b), a metal-rich
// system. Table 1 lists linear component columns: a row with an empty first
// cell names the ions of the columns 3..9 that follow, rows starting with
// "N" hold component columns and the remaining rows their errors.
//
// Components given as ">" make the ion a lower limit. "<" components are
// left out of a measured sum and the ion is marked NoteUnconstrainedLimit;
// an ion with only "<" components becomes the sum of its ceilings. An ion with nothing measured is reported as
// skipped.
type Peroux06b struct{}

func (Peroux06b) Name() string     { return "Prx06b" }
func (Peroux06b) Citation() string { return "Peroux, C. et al. 2006b, A&A, 450, 53" }

const peroux06bTable = "peroux06b.tb1.ascii"

// Transcribed by hand; there is no online table.
func (Peroux06b) Tables() []fetch.Ref {
	return []fetch.Ref{{Name: peroux06bTable}}
}

const (
	peroux06bFirst = 3
	peroux06bLast  = 10
)

type peroux06bIon struct {
	id       ion.ID
	sum      float64   // linear column of measured components
	sigmaSq  float64   // squared linear errors
	ceilings []float64 // log columns of "<" components
	lower    bool
	measured bool
	header   int
}

func (p Peroux06b) Parse(tables Tables) ([]Result, error) {
	table, err := tables.Split(peroux06bTable, ixgest.DelimTab)
	if err != nil {
		return nil, err
	}

	var (
		group   []*peroux06bIon
		all     []*peroux06bIon
		skipped []ixgest.Skip
	)
	for i, row := range table {
		if ixgest.Blank(row) {
			continue
		}
		cells := cellRange(row, peroux06bFirst, peroux06bLast)
		if ixgest.Field(row, 0) == "" {
			group = group[:0:0]
			for _, label := range cells {
				id, err := ixgest.LookupIon(i, row, label)
				if err != nil {
					return nil, err
				}
				entry := &peroux06bIon{id: id, header: i}
				group = append(group, entry)
				all = append(all, entry)
			}
			continue
		}
		if len(group) == 0 {
			return nil, ixgest.RowError(i, row, nil, "values before an ion header")
		}
		if len(cells) > len(group) {
			return nil, ixgest.RowError(i, row, nil, "%d values for %d ions", len(cells), len(group))
		}

		isColumn := strings.HasPrefix(ixgest.Field(row, 0), "N")
		for k, cell := range cells {
			entry := group[k]
			if cell == "" || cell[0] == '.' {
				continue
			}
			if !isColumn {
				s, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, ixgest.RowError(i, row, err, "bad error for %s", entry.id.Label())
				}
				entry.sigmaSq += s * s
				continue
			}
			switch cell[0] {
			case '>':
				n, err := strconv.ParseFloat(cell[1:], 64)
				if err != nil {
					return nil, ixgest.RowError(i, row, err, "bad limit for %s", entry.id.Label())
				}
				entry.lower, entry.measured = true, true
				entry.sum += n
			case '<':
				n, err := strconv.ParseFloat(cell[1:], 64)
				if err != nil {
					return nil, ixgest.RowError(i, row, err, "bad limit for %s", entry.id.Label())
				}
				logN, err := column.ToLog(n)
				if err != nil {
					return nil, ixgest.RowError(i, row, err, "bad limit for %s", entry.id.Label())
				}
				entry.ceilings = append(entry.ceilings, logN)
			default:
				n, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, ixgest.RowError(i, row, err, "bad column for %s", entry.id.Label())
				}
				entry.measured = true
				entry.sum += n
			}
		}
	}

	b := clm.NewBuilder()
	for _, e := range all {
		m, note, ok, err := e.measurement()
		if err != nil {
			return nil, errors.Wrapf(err, "ion %s", e.id.Label())
		}
		if !ok {
			skipped = append(skipped, ixgest.Skip{Index: e.header, Reason: "nothing measured for " + e.id.Label()})
			continue
		}
		if err := b.Add(clm.Row{Ion: e.id, Measurement: m}); err != nil {
			return nil, err
		}
		if note != 0 {
			if err := b.Annotate(e.id, note); err != nil {
				return nil, err
			}
		}
	}

	return []Result{{
		System: SystemInfo{
			Name:     "SDSSJ1323-0021_z0.716",
			RA:       "13:23:23.78",
			Dec:      "-00:21:55.2",
			Zem:      1.390,
			Zabs:     0.716,
			VLim:     [2]float64{-200, 200},
			NHI:      20.21,
			SigNHI:   [2]float64{0.20, 0.20},
			Ref:      p.Name(),
			Citation: p.Citation(),
		},
		Store:   b.Build(),
		Skipped: skipped,
	}}, nil
}

func (e *peroux06bIon) measurement() (clm.Measurement, clm.Note, bool, error) {
	switch {
	case e.measured:
		v, err := column.FromLinear(e.sum, math.Sqrt(e.sigmaSq))
		if err != nil {
			return clm.Measurement{}, 0, false, err
		}
		var note clm.Note
		if len(e.ceilings) > 0 {
			note = clm.NoteUnconstrainedLimit
		}
		if e.lower {
			return clm.NewLowerLimit(v.LogN), note, true, nil
		}
		return clm.NewDetection(v.LogN, v.Sigma), note, true, nil
	case len(e.ceilings) > 0:
		limits := make([]clm.Measurement, len(e.ceilings))
		for i, c := range e.ceilings {
			limits[i] = clm.NewUpperLimit(c)
		}
		m, err := clm.SumCeilings(limits...)
		return m, clm.NoteCeilingSum, err == nil, err
	}
	return clm.Measurement{}, 0, false, nil
}

// cellRange returns the trimmed cells [from, to) that are present in row.
func cellRange(row []string, from, to int) []string {
	var out []string
	for i := from; i < to && i < len(row); i++ {
		out = append(out, ixgest.Field(row, i))
	}
	return out
}
