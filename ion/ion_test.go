package ion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ionclm/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"spaced label", "Si IV", ID{Z: 14, Stage: 4}},
		{"compact label", "SiIV", ID{Z: 14, Stage: 4}},
		{"lowercase stage", "Si iv", ID{Z: 14, Stage: 4}},
		{"extra whitespace", "  Mg   II ", ID{Z: 12, Stage: 2}},
		{"single letter element", "CIV", ID{Z: 6, Stage: 4}},
		{"neutral hydrogen", "HI", ID{Z: 1, Stage: 1}},
		{"oxygen six", "O VI", ID{Z: 8, Stage: 6}},
		{"fine structure marker", "C II*", ID{Z: 6, Stage: 2}},
		{"zinc", "Zn II", ID{Z: 30, Stage: 2}},
		{"compact mixed case", "FeII", ID{Z: 26, Stage: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, input := range []string{"", "Xx II", "Fe", "Si IIII", "H III", "Si IV extra", "4 II"} {
		t.Run(input, func(t *testing.T) {
			_, err := Lookup(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrUnknownIon))

			var unknown *UnknownError
			require.True(t, errors.As(err, &unknown))
			assert.Equal(t, input, unknown.Label)
		})
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for z := 1; z <= 30; z++ {
		for stage := 1; stage <= z+1 && stage <= 12; stage++ {
			id := ID{Z: z, Stage: stage}
			got, err := Lookup(id.Label())
			require.NoError(t, err, id.Label())
			assert.Equal(t, id, got)
		}
	}
}

func TestRoman(t *testing.T) {
	assert.Equal(t, "I", Roman(1))
	assert.Equal(t, "IV", Roman(4))
	assert.Equal(t, "IX", Roman(9))
	assert.Equal(t, "XIV", Roman(14))
	assert.Equal(t, "?", Roman(0))

	n, err := ParseRoman("xiv")
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	_, err = ParseRoman("IIV")
	assert.Error(t, err)
}

func TestLess(t *testing.T) {
	si2 := MustLookup("Si II")
	si4 := MustLookup("Si IV")
	fe2 := MustLookup("Fe II")

	assert.True(t, si2.Less(si4))
	assert.True(t, si4.Less(fe2))
	assert.False(t, fe2.Less(si2))
	assert.Panics(t, func() { MustLookup("Qq I") })
}
