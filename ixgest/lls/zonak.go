package lls

import (
	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/column"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/ion"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// Zonak04 is PG1634+706 from Zonak et al. (2004). Table 2 lists the
// components of sub-systems A (model 2) and B; their columns are summed per
// sub-system, then the two sub-systems are merged. The per-ion errors were
// not published and are estimates.
type Zonak04 struct{}

func (Zonak04) Name() string        { return "Zon04" }
func (Zonak04) Citation() string    { return "Zonak, S. et al. 2004, ApJ, 606, 196" }
func (Zonak04) Tables() []fetch.Ref { return nil }

type componentSum struct {
	ion        string
	components []float64
	sigma      float64
}

var (
	zonakA = []componentSum{
		{"Mg II", []float64{11.45, 11.90, 12.02, 11.68}, 0.05},
		{"Si III", []float64{12.5, 12.5, 12.8, 12.7}, 0.25},
		{"Si IV", []float64{10.9, 10.8, 11.2, 11.1}, 0.15},
	}
	zonakB = []componentSum{
		{"Si III", []float64{11.8, 12.8, 12.4}, 0.15},
		{"Si IV", []float64{11.2, 12.2, 11.8}, 0.15},
	}
)

func (z Zonak04) Parse(Tables) ([]Result, error) {
	a, err := sumComponents(zonakA)
	if err != nil {
		return nil, errors.Wrap(err, "sub-system A")
	}
	b, err := sumComponents(zonakB)
	if err != nil {
		return nil, errors.Wrap(err, "sub-system B")
	}
	total, err := clm.Merge(a, b)
	if err != nil {
		return nil, err
	}
	return []Result{{
		System: SystemInfo{
			Name:     "PG1634+706_z1.041",
			RA:       "16:34:28.9897",
			Dec:      "+70:31:32.422",
			Zem:      1.337,
			Zabs:     1.0414,
			VLim:     [2]float64{-200, 30},
			NHI:      17.23,
			SigNHI:   [2]float64{0.15, 0.15},
			MH:       mh(-1.4),
			Ref:      z.Name(),
			Citation: z.Citation(),
		},
		Store:      total,
		Subsystems: []Subsystem{{Label: "A", Store: a}, {Label: "B", Store: b}},
	}}, nil
}

func sumComponents(sums []componentSum) (*clm.Store, error) {
	rows := make([]clm.Row, 0, len(sums))
	for _, s := range sums {
		id, err := ion.Lookup(s.ion)
		if err != nil {
			return nil, err
		}
		logN, err := column.SumLog(s.components)
		if err != nil {
			return nil, errors.Wrapf(err, "sum %s", s.ion)
		}
		rows = append(rows, clm.Row{Ion: id, Measurement: clm.NewDetection(logN, s.sigma)})
	}
	return clm.FromRows(rows)
}
