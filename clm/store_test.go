package clm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/internal/util"
	"github.com/teranos/ionclm/ion"
)

var (
	siII  = ion.MustLookup("Si II")
	siIV  = ion.MustLookup("Si IV")
	cIV   = ion.MustLookup("C IV")
	feII  = ion.MustLookup("Fe II")
	mgII  = ion.MustLookup("Mg II")
	siIII = ion.MustLookup("Si III")
)

func TestFromRows(t *testing.T) {
	t.Run("builds a store in insertion order", func(t *testing.T) {
		s, err := FromRows([]Row{
			{Ion: siII, Measurement: NewUpperLimit(12.3)},
			{Ion: feII, Measurement: NewDetection(13.10, 0.08)},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []ion.ID{siII, feII}, s.Ions())

		m, err := s.Get(siII)
		require.NoError(t, err)
		assert.Equal(t, NewUpperLimit(12.3), m)

		m, err = s.Get(feII)
		require.NoError(t, err)
		assert.Equal(t, Measurement{LogN: 13.10, Sigma: 0.08, Flag: Detection}, m)
	})

	t.Run("rejects a duplicate ion", func(t *testing.T) {
		_, err := FromRows([]Row{
			{Ion: cIV, Measurement: NewDetection(13.5, 0.1)},
			{Ion: cIV, Measurement: NewDetection(13.2, 0.1)},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDuplicateIon))
		assert.Contains(t, err.Error(), "C IV")

		var dup *DuplicateIonError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, cIV, dup.Ion)
	})

	t.Run("rejects invalid measurements", func(t *testing.T) {
		_, err := FromRows([]Row{{Ion: cIV, Measurement: NewDetection(13.5, -0.1)}})
		assert.True(t, errors.IsDomainError(err))

		_, err = FromRows([]Row{{Ion: cIV, Measurement: Measurement{LogN: 13, Flag: 9}}})
		assert.True(t, errors.IsDomainError(err))

		_, err = FromRows([]Row{{Ion: cIV, Measurement: NewDetection(math.NaN(), 0)}})
		assert.True(t, errors.IsDomainError(err))
	})
}

func TestGetMissing(t *testing.T) {
	s, err := FromRows([]Row{{Ion: siII, Measurement: NewUpperLimit(12.3)}})
	require.NoError(t, err)

	_, err = s.Get(cIV)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrKeyNotFound))
	assert.Contains(t, err.Error(), "C IV")

	var nilStore *Store
	_, err = nilStore.Get(cIV)
	assert.True(t, errors.Is(err, errors.ErrKeyNotFound))
	assert.Zero(t, nilStore.Len())
	assert.Empty(t, nilStore.Ions())
}

func TestIonsIsACopy(t *testing.T) {
	s, err := FromRows([]Row{{Ion: siII, Measurement: NewUpperLimit(12.3)}})
	require.NoError(t, err)

	ions := s.Ions()
	ions[0] = cIV
	assert.Equal(t, []ion.ID{siII}, s.Ions())
}

func TestSortedIons(t *testing.T) {
	s, err := FromRows([]Row{
		{Ion: feII, Measurement: NewDetection(13, 0.1)},
		{Ion: siIV, Measurement: NewDetection(13, 0.1)},
		{Ion: siII, Measurement: NewDetection(13, 0.1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []ion.ID{siII, siIV, feII}, s.SortedIons())
}

func TestBuilderAccumulate(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Accumulate(Row{Ion: cIV, Measurement: NewDetection(13.0, 0.1)}))
	require.NoError(t, b.Accumulate(Row{Ion: cIV, Measurement: NewDetection(13.0, 0.1)}))
	s := b.Build()

	m, err := s.Get(cIV)
	require.NoError(t, err)
	assert.InDelta(t, 13.0+math.Log10(2), m.LogN, 1e-9)
	assert.InDelta(t, 0.1/math.Sqrt2, m.Sigma, 1e-9)
	assert.Equal(t, Detection, m.Flag)

	t.Run("limits are not additive components", func(t *testing.T) {
		err := b.Accumulate(Row{Ion: cIV, Measurement: NewUpperLimit(12.0)})
		assert.True(t, errors.IsDomainError(err))
	})

	t.Run("built store is independent of the builder", func(t *testing.T) {
		require.NoError(t, b.Add(Row{Ion: siII, Measurement: NewUpperLimit(12.3)}))
		assert.False(t, s.Has(siII))
		assert.Equal(t, 1, s.Len())
	})
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name string
		in   []Measurement
		want Measurement
	}{
		{
			name: "detection beats limits",
			in:   []Measurement{NewUpperLimit(13.2), NewDetection(13.4, 0.1), NewLowerLimit(13.1)},
			want: NewDetection(13.4, 0.1),
		},
		{
			name: "smallest sigma detection",
			in:   []Measurement{NewDetection(13.4, 0.2), NewDetection(13.5, 0.05), NewDetection(13.3, 0.05)},
			want: NewDetection(13.5, 0.05),
		},
		{
			name: "any sigma beats none",
			in:   []Measurement{NewDetection(13.4, 0), NewDetection(13.5, 0.3)},
			want: NewDetection(13.5, 0.3),
		},
		{
			name: "highest lower limit",
			in:   []Measurement{NewLowerLimit(13.9), NewLowerLimit(14.2), NewUpperLimit(15)},
			want: NewLowerLimit(14.2),
		},
		{
			name: "lowest upper limit",
			in:   []Measurement{NewUpperLimit(12.9), NewUpperLimit(12.4), NewBlend(13, 0.1)},
			want: NewUpperLimit(12.4),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.in...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Reconcile()
	assert.True(t, errors.IsDomainError(err))
}

func TestApply(t *testing.T) {
	oI := ion.MustLookup("O I")
	nI := ion.MustLookup("N I")
	s, err := FromRows([]Row{
		{Ion: oI, Measurement: NewLowerLimit(14.2)},
		{Ion: nI, Measurement: NewDetection(13.6, 0.1)},
	})
	require.NoError(t, err)

	patched, err := s.Apply([]Patch{
		{Ion: oI, LogN: util.Ptr(14.47), Sigma: util.Ptr(0.05), Reason: "column from text"},
		{Ion: nI, Flag: util.Ptr(UpperLimit), Reason: "blended with Ly-alpha forest"},
	})
	require.NoError(t, err)

	o, _ := patched.Get(oI)
	assert.Equal(t, Measurement{LogN: 14.47, Sigma: 0.05, Flag: LowerLimit}, o)
	assert.True(t, patched.Note(oI).Has(NoteErratum))

	n, _ := patched.Get(nI)
	assert.Equal(t, UpperLimit, n.Flag)
	assert.InDelta(t, 13.6, n.LogN, 1e-12)

	// Input untouched.
	orig, _ := s.Get(oI)
	assert.Equal(t, NewLowerLimit(14.2), orig)
	assert.Zero(t, s.Note(oI))

	t.Run("missing ion fails", func(t *testing.T) {
		_, err := s.Apply([]Patch{{Ion: cIV, LogN: util.Ptr(13.0), Reason: "stale"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrKeyNotFound))
		assert.Contains(t, err.Error(), "stale")
	})
}

func TestFlag(t *testing.T) {
	for _, f := range []Flag{Detection, LowerLimit, UpperLimit, Blend} {
		parsed, err := ParseFlag(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)

		text, err := f.MarshalText()
		require.NoError(t, err)
		var back Flag
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, f, back)
	}

	f, err := ParseFlag("3")
	require.NoError(t, err)
	assert.Equal(t, UpperLimit, f)

	_, err = ParseFlag("saturated-ish")
	assert.Error(t, err)

	assert.Equal(t, "<12.30", NewUpperLimit(12.3).String())
	assert.Equal(t, ">14.20", NewLowerLimit(14.2).String())
	assert.Equal(t, "13.10 ± 0.08", NewDetection(13.1, 0.08).String())
}
