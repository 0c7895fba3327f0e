package clm

import (
	"math"

	"github.com/teranos/ionclm/column"
	"github.com/teranos/ionclm/errors"
)

// Merge combines two stores (two sub-systems of one absorber, or two tables
// reporting overlapping ions) into a new store. Neither input is modified.
//
// Per ion:
//   - present in one store only: carried unchanged
//   - detection + detection: columns summed, sigma propagated
//   - detection + upper limit: the detection, noted NoteUnconstrainedLimit
//   - upper + upper: the lower (tighter) ceiling, sigma 0
//   - any lower limit: lower limit of the summed non-ceiling components,
//     sigma from the non-saturated components only when every component
//     carries one
//   - blend: sums like a detection and taints the result as a blend
//
// Ions from a keep their order; ions only in b follow in b's order.
// With mixed limit flags the result depends on grouping, so combine more
// than two stores with MergeAll.
func Merge(a, b *Store) (*Store, error) {
	out := NewBuilder()
	for _, id := range a.Ions() {
		ma, _ := a.Get(id)
		note := a.Note(id)
		if mb, err := b.Get(id); err == nil {
			merged, extra, err := combine(ma, mb)
			if err != nil {
				return nil, errors.Wrapf(err, "merge %s", id.Label())
			}
			ma = merged
			note |= b.Note(id) | extra
		}
		out.set(id, ma, note)
	}
	for _, id := range b.Ions() {
		if a.Has(id) {
			continue
		}
		mb, _ := b.Get(id)
		out.set(id, mb, b.Note(id))
	}
	return out.Build(), nil
}

// MergeAll folds stores left to right: ((s0 ⊕ s1) ⊕ s2) ⊕ ...
// Zero stores give an empty store.
func MergeAll(stores ...*Store) (*Store, error) {
	acc := Empty()
	for i, s := range stores {
		merged, err := Merge(acc, s)
		if err != nil {
			return nil, errors.Wrapf(err, "merge store %d", i)
		}
		acc = merged
	}
	return acc, nil
}

// SumCeilings adds upper limits explicitly, for sources that report a total
// ceiling as the sum of per-component ceilings. Every input must be an
// upper limit.
func SumCeilings(ms ...Measurement) (Measurement, error) {
	logNs := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.Flag != UpperLimit {
			return Measurement{}, errors.NewDomainError("ceiling sum given a %s", m.Flag)
		}
		logNs = append(logNs, m.LogN)
	}
	logN, err := column.SumLog(logNs)
	if err != nil {
		return Measurement{}, err
	}
	return NewUpperLimit(logN), nil
}

func combine(a, b Measurement) (Measurement, Note, error) {
	switch {
	case a.Flag == UpperLimit && b.Flag == UpperLimit:
		return NewUpperLimit(math.Min(a.LogN, b.LogN)), 0, nil

	case a.Flag == LowerLimit || b.Flag == LowerLimit:
		return combineSaturated(a, b)

	case a.Flag == UpperLimit:
		return b, NoteUnconstrainedLimit, nil
	case b.Flag == UpperLimit:
		return a, NoteUnconstrainedLimit, nil
	}

	// Detections and blends: physical columns add.
	sum, err := column.Sum([]column.Value{a.Value(), b.Value()})
	if err != nil {
		return Measurement{}, 0, err
	}
	flag := Detection
	if a.Flag == Blend || b.Flag == Blend {
		flag = Blend
	}
	return Measurement{LogN: sum.LogN, Sigma: sum.Sigma, Flag: flag}, 0, nil
}

func combineSaturated(a, b Measurement) (Measurement, Note, error) {
	var note Note
	var parts []Measurement
	for _, m := range []Measurement{a, b} {
		if m.Flag == UpperLimit {
			note |= NoteUnconstrainedLimit
			continue
		}
		parts = append(parts, m)
	}

	logNs := make([]float64, len(parts))
	allSigma := true
	var measured []column.Value
	for i, m := range parts {
		logNs[i] = m.LogN
		if m.Sigma <= 0 {
			allSigma = false
		}
		if m.Flag != LowerLimit {
			measured = append(measured, m.Value())
		}
	}
	logN, err := column.SumLog(logNs)
	if err != nil {
		return Measurement{}, 0, err
	}

	sigma := 0.0
	if allSigma && len(measured) > 0 {
		linear := make([]float64, len(measured))
		for i, v := range measured {
			linear[i] = column.LinearSigma(v)
		}
		sigma = column.QuadratureSum(linear) / (math.Ln10 * column.ToLinear(logN))
	}
	return Measurement{LogN: logN, Sigma: sigma, Flag: LowerLimit}, note, nil
}
