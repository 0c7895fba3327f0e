package ixgest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/errors"
)

func TestClassifyTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   clm.Measurement
	}{
		{"split upper limit", []string{"<", "12.3"}, clm.NewUpperLimit(12.3)},
		{"joined upper limit", []string{"<12.3"}, clm.NewUpperLimit(12.3)},
		{"joined lower limit", []string{">14.20"}, clm.NewLowerLimit(14.2)},
		{"split lower limit", []string{">", "13.9"}, clm.NewLowerLimit(13.9)},
		{"value and sigma", []string{"13.10", "0.08"}, clm.NewDetection(13.10, 0.08)},
		{"plus-minus", []string{"13.45 ± 0.05"}, clm.NewDetection(13.45, 0.05)},
		{"tex plus-minus", []string{" 13.45 $\\pm$ 0.05 "}, clm.NewDetection(13.45, 0.05)},
		{"ascii plus-minus", []string{"13.45", "+/-", "0.05"}, clm.NewDetection(13.45, 0.05)},
		{"tex upper limit", []string{"$<$12.08"}, clm.NewUpperLimit(12.08)},
		{"tex lower limit", []string{"$>$14.31"}, clm.NewLowerLimit(14.31)},
		{"gtrsim", []string{"\\gtrsim 14.0"}, clm.NewLowerLimit(14.0)},
		{"lesssim", []string{"\\lesssim", "12.0"}, clm.NewUpperLimit(12.0)},
		{"limit with empty sigma cell", []string{"<12.3", ""}, clm.NewUpperLimit(12.3)},
		{"limit with ellipsis sigma", []string{"<12.3", "..."}, clm.NewUpperLimit(12.3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyTokens(tt.tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyTokensNoValue(t *testing.T) {
	for _, tokens := range [][]string{nil, {""}, {"  "}, {"\\ldots"}, {"..."}, {"$\\ldots$"}} {
		_, err := ClassifyTokens(tokens)
		assert.True(t, errors.Is(err, ErrNoValue), "tokens %q", tokens)
	}
}

func TestClassifyTokensMissingSigma(t *testing.T) {
	m, err := ClassifyTokens([]string{"13.2"})
	assert.True(t, errors.Is(err, ErrMissingSigma))
	assert.Equal(t, clm.NewDetection(13.2, 0), m)
}

func TestClassifyTokensMalformed(t *testing.T) {
	for _, tokens := range [][]string{
		{"<"},
		{"<abc"},
		{"13.1", "x"},
		{"13.1", "0.1", "extra"},
		{"13.1", "-0.1"},
		{"NaN", "0.1"},
		{"<12", "13"},
	} {
		_, err := ClassifyTokens(tokens)
		require.Error(t, err, "tokens %q", tokens)
		assert.False(t, errors.Is(err, ErrNoValue))
	}
}

func TestParseValueSigma(t *testing.T) {
	v, s, err := ParseValueSigma("14.08 ± 0.05")
	require.NoError(t, err)
	assert.InDelta(t, 14.08, v, 1e-12)
	assert.InDelta(t, 0.05, s, 1e-12)

	_, _, err = ParseValueSigma("<12")
	assert.Error(t, err)
}

func TestRowParseError(t *testing.T) {
	_, err := LookupIon(3, []string{"Xx II", "<", "12"}, "Xx II")
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrRowParse))
	assert.True(t, errors.Is(err, errors.ErrUnknownIon))
	assert.Contains(t, err.Error(), "Xx II")
	assert.Contains(t, err.Error(), "row 3")

	var rpe *RowParseError
	require.True(t, errors.As(err, &rpe))
	assert.Equal(t, 3, rpe.Index)
	assert.Equal(t, []string{"Xx II", "<", "12"}, rpe.Raw)
}
