package lls

import (
	"github.com/teranos/ionclm/ixgest"
	"github.com/teranos/ionclm/ixgest/fetch"
)

// Meiring06 is Q1107+0003 from Meiring et al. (2006), Table 4. Coordinates
// come from the STIS header and NHI from Rao, Turnshek & Nestor (2006).
type Meiring06 struct{}

func (Meiring06) Name() string        { return "Mei06" }
func (Meiring06) Citation() string    { return "Meiring, J. et al. 2006, MNRAS, 370, 43" }
func (Meiring06) Tables() []fetch.Ref { return nil }

var meiring06Table = ixgest.Table{
	{"Zn II", "<12.08"},
	{"Ti II", "<13.01"},
	{"Cr II", "<12.76"},
}

func (m Meiring06) Parse(Tables) ([]Result, error) {
	store, err := ixgest.Normalize(meiring06Table)
	if err != nil {
		return nil, err
	}
	return []Result{{
		System: SystemInfo{
			Name:     "SDSSJ1107+0003_z0.954",
			RA:       "166.90273",
			Dec:      "0.05795000",
			Zem:      1.726,
			Zabs:     0.9542,
			VLim:     [2]float64{-300, 300},
			NHI:      20.26,
			SigNHI:   [2]float64{0.14, 0.09},
			Ref:      m.Name(),
			Citation: m.Citation(),
		},
		Store: store,
	}}, nil
}

// Nestor08 is Q2149+212 from Nestor et al. (2008), Table 1.
type Nestor08 struct{}

func (Nestor08) Name() string        { return "Nes08" }
func (Nestor08) Citation() string    { return "Nestor, D. et al. 2008, MNRAS, 390, 1670" }
func (Nestor08) Tables() []fetch.Ref { return nil }

var nestor08Table = ixgest.Table{
	{"Zn II", "<12.13"},
	{"Cr II", "<12.59"},
}

func (n Nestor08) Parse(Tables) ([]Result, error) {
	store, err := ixgest.Normalize(nestor08Table)
	if err != nil {
		return nil, err
	}
	return []Result{{
		System: SystemInfo{
			Name:     "SDSSJ2151+2130_z1.002",
			RA:       "327.94096",
			Dec:      "21.503750",
			Zem:      1.534,
			Zabs:     1.0023,
			VLim:     [2]float64{-300, 300},
			NHI:      19.30,
			SigNHI:   [2]float64{0.10, 0.10},
			Ref:      n.Name(),
			Citation: n.Citation(),
		},
		Store: store,
	}}, nil
}
