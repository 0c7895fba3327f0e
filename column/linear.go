package column

import (
	"math"

	"github.com/teranos/ionclm/errors"
)

// SumLinear adds linear columns.
func SumLinear(ns []float64) float64 {
	total := 0.0
	for _, n := range ns {
		total += n
	}
	return total
}

// QuadratureSum returns sqrt(sum(s_i^2)) for linear uncertainties.
func QuadratureSum(sigmas []float64) float64 {
	variance := 0.0
	for _, s := range sigmas {
		variance += s * s
	}
	return math.Sqrt(variance)
}

// FromLinear converts a linear column and its linear absolute uncertainty to
// log space: sigma_log = sigma_lin / (ln(10) * N).
func FromLinear(n, sigmaLinear float64) (Value, error) {
	logN, err := ToLog(n)
	if err != nil {
		return Value{}, err
	}
	if sigmaLinear < 0 || math.IsNaN(sigmaLinear) {
		return Value{}, errors.NewDomainError("linear sigma %g must be non-negative", sigmaLinear)
	}
	return Value{LogN: logN, Sigma: sigmaLinear / (math.Ln10 * n)}, nil
}

// LinearSigma converts a log uncertainty back to a linear absolute one.
func LinearSigma(v Value) float64 {
	return math.Ln10 * ToLinear(v.LogN) * v.Sigma
}
