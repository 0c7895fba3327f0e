package clm

import (
	"github.com/teranos/ionclm/errors"
)

var flagRank = map[Flag]int{
	Detection:  4,
	LowerLimit: 3,
	UpperLimit: 2,
	Blend:      1,
}

// Reconcile picks one value from several measurements of the same column
// made with different transitions of one ion. These are not additive.
//
// A detection beats a lower limit, which beats an upper limit, which beats a
// blend. Among detections the smallest positive sigma wins (the first one on a
// tie, and any sigma beats none); among lower limits the highest; among upper
// limits the lowest.
func Reconcile(ms ...Measurement) (Measurement, error) {
	if len(ms) == 0 {
		return Measurement{}, errors.NewDomainError("nothing to reconcile")
	}
	best := ms[0]
	for _, m := range ms[1:] {
		if better(m, best) {
			best = m
		}
	}
	return best, nil
}

func better(m, best Measurement) bool {
	if flagRank[m.Flag] != flagRank[best.Flag] {
		return flagRank[m.Flag] > flagRank[best.Flag]
	}
	switch m.Flag {
	case Detection, Blend:
		if best.Sigma <= 0 {
			return m.Sigma > 0
		}
		return m.Sigma > 0 && m.Sigma < best.Sigma
	case LowerLimit:
		return m.LogN > best.LogN
	case UpperLimit:
		return m.LogN < best.LogN
	}
	return false
}
