// Package column implements arithmetic on logarithmic column densities.
//
// Physical columns add; log columns do not. Every function here converts to
// linear space, combines, and converts back. Uncertainties are 1-sigma in dex
// and propagate through the log transform rather than by quadrature of the
// log sigmas.
//
// Callers decide which measurements may be summed: upper limits are never
// passed in here implicitly.
package column

import (
	"math"

	"github.com/teranos/ionclm/errors"
)

// Value is one log column with its 1-sigma log uncertainty.
// Sigma == 0 means no published uncertainty.
type Value struct {
	LogN  float64
	Sigma float64
}

// ToLinear converts a log column to a linear column (cm^-2).
func ToLinear(logN float64) float64 {
	return math.Pow(10, logN)
}

// ToLog converts a linear column to its log10. The column must be positive.
func ToLog(n float64) (float64, error) {
	if math.IsNaN(n) || n <= 0 {
		return 0, errors.NewDomainError("column %g must be positive", n)
	}
	return math.Log10(n), nil
}

// SumLog adds columns given as logs and returns the log of the total.
func SumLog(logNs []float64) (float64, error) {
	if len(logNs) == 0 {
		return 0, errors.NewDomainError("sum of zero columns is undefined")
	}
	total := 0.0
	for _, logN := range logNs {
		if math.IsNaN(logN) || math.IsInf(logN, 1) {
			return 0, errors.NewDomainError("log column %g is not finite", logN)
		}
		total += ToLinear(logN)
	}
	return ToLog(total)
}

// PropagateSumSigma returns the log uncertainty of the summed column.
//
// Each sigma converts to a linear absolute error ln(10)*N*sigma; these add in
// quadrature and convert back as sigma_lin/(ln(10)*N_total).
func PropagateSumSigma(values []Value) (float64, error) {
	if len(values) == 0 {
		return 0, errors.NewDomainError("sigma of zero columns is undefined")
	}
	var total, variance float64
	for _, v := range values {
		if v.Sigma < 0 || math.IsNaN(v.Sigma) {
			return 0, errors.NewDomainError("sigma %g must be non-negative", v.Sigma)
		}
		if math.IsNaN(v.LogN) || math.IsInf(v.LogN, 1) {
			return 0, errors.NewDomainError("log column %g is not finite", v.LogN)
		}
		n := ToLinear(v.LogN)
		sigLin := math.Ln10 * n * v.Sigma
		total += n
		variance += sigLin * sigLin
	}
	if total <= 0 {
		return 0, errors.NewDomainError("total column is zero")
	}
	return math.Sqrt(variance) / (math.Ln10 * total), nil
}

// Sum combines values into a single Value using SumLog and PropagateSumSigma.
func Sum(values []Value) (Value, error) {
	logNs := make([]float64, len(values))
	for i, v := range values {
		logNs[i] = v.LogN
	}
	logN, err := SumLog(logNs)
	if err != nil {
		return Value{}, err
	}
	sigma, err := PropagateSumSigma(values)
	if err != nil {
		return Value{}, err
	}
	return Value{LogN: logN, Sigma: sigma}, nil
}
