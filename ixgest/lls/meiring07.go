package lls

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// Meiring07 is the Magellan sub-DLA sample of Meiring et al. (2007).
// Coordinates and emission redshifts come from Table 1, AODM columns from
// Table 11; both are LaTeX tables taken from the astro-ph source. Systems
// at or above the DLA threshold are returned excluded.
type Meiring07 struct{}

func (Meiring07) Name() string     { return "Mei07" }
func (Meiring07) Citation() string { return "Meiring, J. et al. 2007, MNRAS, 376, 557" }

const (
	meiring07Targets = "meiring07.tb1.ascii"
	meiring07Columns = "meiring07.tb11.ascii"

	// DLAThreshold is the log NHI at which an absorber counts as a DLA.
	DLAThreshold = 20.3
)

func (Meiring07) Tables() []fetch.Ref {
	return []fetch.Ref{{Name: meiring07Targets}, {Name: meiring07Columns}}
}

// Meiring07Zem replaces emission redshifts that Table 1 does not give
// usably.
var Meiring07Zem = map[string]float64{
	"Q0826-2230": 0.911,
}

type meiring07Target struct {
	ra, dec string
	zem     float64
}

func (m Meiring07) Parse(tables Tables) ([]Result, error) {
	t1, err := tables.Split(meiring07Targets, ixgest.DelimAmpersand)
	if err != nil {
		return nil, err
	}
	targets, err := meiring07ParseTargets(t1)
	if err != nil {
		return nil, errors.Wrap(err, meiring07Targets)
	}

	t11, err := tables.Split(meiring07Columns, ixgest.DelimAmpersand)
	if err != nil {
		return nil, err
	}
	results, err := m.parseColumns(t11, targets)
	if err != nil {
		return nil, errors.Wrap(err, meiring07Columns)
	}
	return results, nil
}

func meiring07ParseTargets(table ixgest.Table) (map[string]meiring07Target, error) {
	targets := make(map[string]meiring07Target)
	for i, row := range table {
		if ixgest.Blank(row) || hasAnyPrefix(row[0], []string{"QS", `\h`, `$\`, "J2"}) {
			continue
		}
		qso := ixgest.Field(row, 0)
		t := meiring07Target{ra: ixgest.Field(row, 2), dec: ixgest.Field(row, 3)}
		if zem, ok := Meiring07Zem[qso]; ok {
			t.zem = zem
		} else {
			v, err := strconv.ParseFloat(ixgest.Field(row, 5), 64)
			if err != nil {
				return nil, ixgest.RowError(i, row, err, "bad zem for %s", qso)
			}
			t.zem = v
		}
		targets[qso] = t
	}
	return targets, nil
}

func (m Meiring07) parseColumns(table ixgest.Table, targets map[string]meiring07Target) ([]Result, error) {
	var (
		results []Result
		ions    []ion.ID
		pending *SystemInfo
	)
	for i, row := range table {
		if ixgest.Blank(row) || hasAnyPrefix(row[0], []string{`\h`, "  "}) {
			continue
		}
		cells := cellRange(row, 3, len(row)-1)
		switch {
		case strings.HasPrefix(row[0], "QS"):
			ions = ions[:0:0]
			for _, cell := range cells {
				id, err := ixgest.LookupIon(i, row, TeXIonLabel(cell))
				if err != nil {
					return nil, err
				}
				ions = append(ions, id)
			}

		case strings.HasPrefix(row[0], "Q"):
			qso := ixgest.Field(row, 0)
			target, ok := targets[qso]
			if !ok {
				return nil, ixgest.RowError(i, row, nil, "%s is not in %s", qso, meiring07Targets)
			}
			zabs, err := strconv.ParseFloat(ixgest.Field(row, 1), 64)
			if err != nil {
				return nil, ixgest.RowError(i, row, err, "bad zabs for %s", qso)
			}
			nhi, sig, err := ixgest.ParseValueSigma(ixgest.Field(row, 2))
			if err != nil {
				return nil, ixgest.RowError(i, row, err, "bad NHI for %s", qso)
			}
			pending = &SystemInfo{
				Name:     fmt.Sprintf("%s_z%.3f", qso, zabs),
				RA:       target.ra,
				Dec:      target.dec,
				Zem:      target.zem,
				Zabs:     zabs,
				NHI:      nhi,
				SigNHI:   [2]float64{sig, sig},
				Ref:      m.Name(),
				Citation: m.Citation(),
			}

		default:
			if pending == nil {
				return nil, ixgest.RowError(i, row, nil, "columns before a system row")
			}
			if len(cells) > len(ions) {
				return nil, ixgest.RowError(i, row, nil, "%d columns for %d ions", len(cells), len(ions))
			}
			var (
				rows    []clm.Row
				skipped []ixgest.Skip
			)
			for k, cell := range cells {
				mm, err := ixgest.ClassifyTokens([]string{cell})
				if errors.Is(err, ixgest.ErrNoValue) {
					skipped = append(skipped, ixgest.Skip{Index: i, Reason: "no value for " + ions[k].Label()})
					continue
				}
				if err != nil {
					return nil, ixgest.RowError(i, row, err, "bad column for %s", ions[k].Label())
				}
				rows = append(rows, clm.Row{Ion: ions[k], Measurement: mm})
			}
			store, err := clm.FromRows(rows)
			if err != nil {
				return nil, ixgest.RowError(i, row, err, "system %s", pending.Name)
			}
			res := Result{System: *pending, Store: store, Skipped: skipped}
			if pending.NHI >= DLAThreshold {
				res.Excluded = true
				res.Reason = fmt.Sprintf("log NHI %.2f is a DLA", pending.NHI)
			}
			results = append(results, res)
			pending = nil
		}
	}
	return results, nil
}

var texLabelCleaner = strings.NewReplacer(
	`\ion`, " ",
	`\textsc`, " ",
	`\mathrm`, " ",
	`\rm`, " ",
	`\sc`, " ",
	`\,`, " ",
	`\ `, " ",
	"$", " ",
	"{", " ",
	"}", " ",
	"~", " ",
)

// TeXIonLabel reduces a LaTeX column header such as "N(\ion{Mg}{ii})" or
// "{\rm Si}\,{\sc ii}" to a plain label ("Mg ii", "Si ii").
func TeXIonLabel(cell string) string {
	s := cell
	if open := strings.LastIndex(s, "("); open >= 0 {
		if end := strings.Index(s[open:], ")"); end > 0 {
			s = s[open+1 : open+end]
		}
	}
	return strings.Join(strings.Fields(texLabelCleaner.Replace(s)), " ")
}
