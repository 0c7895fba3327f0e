package clm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/ionclm/column"
	"github.com/teranos/ionclm/ion"
)

func store(t *testing.T, rows ...Row) *Store {
	t.Helper()
	s, err := FromRows(rows)
	require.NoError(t, err)
	return s
}

func row(id ion.ID, m Measurement) Row {
	return Row{Ion: id, Measurement: m}
}

func mustGet(t *testing.T, s *Store, id ion.ID) Measurement {
	t.Helper()
	m, err := s.Get(id)
	require.NoError(t, err)
	return m
}

func TestMergeCarriesSingleEntries(t *testing.T) {
	a := store(t, row(mgII, NewDetection(12.4, 0.05)))
	b := store(t, row(siIV, NewUpperLimit(12.0)))

	merged, err := Merge(a, b)
	require.NoError(t, err)

	assert.Equal(t, []ion.ID{mgII, siIV}, merged.Ions())
	assert.Equal(t, NewDetection(12.4, 0.05), mustGet(t, merged, mgII))
	assert.Equal(t, NewUpperLimit(12.0), mustGet(t, merged, siIV))
	assert.Zero(t, merged.Note(siIV))
}

func TestMergeDetections(t *testing.T) {
	a := store(t, row(siIII, NewDetection(13.0, 0.1)), row(siIV, NewDetection(12.1, 0.15)))
	b := store(t, row(siIII, NewDetection(12.6, 0.2)), row(siIV, NewDetection(12.4, 0.15)))

	ab, err := Merge(a, b)
	require.NoError(t, err)

	got := mustGet(t, ab, siIII)
	wantN, err := column.SumLog([]float64{13.0, 12.6})
	require.NoError(t, err)
	wantSig, err := column.PropagateSumSigma([]column.Value{{LogN: 13.0, Sigma: 0.1}, {LogN: 12.6, Sigma: 0.2}})
	require.NoError(t, err)
	assert.Equal(t, Detection, got.Flag)
	assert.InDelta(t, wantN, got.LogN, 1e-12)
	assert.InDelta(t, wantSig, got.Sigma, 1e-12)

	t.Run("commutative for detections", func(t *testing.T) {
		ba, err := Merge(b, a)
		require.NoError(t, err)
		assert.True(t, ab.Equal(ba, 1e-12))
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		assert.Equal(t, NewDetection(13.0, 0.1), mustGet(t, a, siIII))
		assert.Equal(t, NewDetection(12.6, 0.2), mustGet(t, b, siIII))
	})
}

func TestMergeDetectionWithUpperLimit(t *testing.T) {
	a := store(t, row(cIV, NewDetection(13.0, 0.1)))
	b := store(t, row(cIV, NewUpperLimit(12.0)))

	for name, pair := range map[string][2]*Store{"detection first": {a, b}, "limit first": {b, a}} {
		t.Run(name, func(t *testing.T) {
			merged, err := Merge(pair[0], pair[1])
			require.NoError(t, err)

			assert.Equal(t, NewDetection(13.0, 0.1), mustGet(t, merged, cIV))
			assert.True(t, merged.Note(cIV).Has(NoteUnconstrainedLimit))
		})
	}
}

func TestMergeUpperLimits(t *testing.T) {
	a := store(t, row(cIV, NewUpperLimit(12.5)))
	b := store(t, row(cIV, NewUpperLimit(12.1)))

	merged, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, NewUpperLimit(12.1), mustGet(t, merged, cIV))
	assert.Zero(t, merged.Note(cIV))
}

func TestMergeLowerLimit(t *testing.T) {
	t.Run("saturated plus detection without sigma on the limit", func(t *testing.T) {
		a := store(t, row(mgII, NewLowerLimit(13.5)))
		b := store(t, row(mgII, NewDetection(13.0, 0.1)))

		merged, err := Merge(a, b)
		require.NoError(t, err)

		got := mustGet(t, merged, mgII)
		want, _ := column.SumLog([]float64{13.5, 13.0})
		assert.Equal(t, LowerLimit, got.Flag)
		assert.InDelta(t, want, got.LogN, 1e-12)
		assert.Zero(t, got.Sigma)
	})

	t.Run("all components carry sigma", func(t *testing.T) {
		a := store(t, row(mgII, Measurement{LogN: 13.5, Sigma: 0.2, Flag: LowerLimit}))
		b := store(t, row(mgII, NewDetection(13.0, 0.1)))

		merged, err := Merge(a, b)
		require.NoError(t, err)

		got := mustGet(t, merged, mgII)
		total := math.Pow(10, 13.5) + math.Pow(10, 13.0)
		wantSig := math.Ln10 * math.Pow(10, 13.0) * 0.1 / (math.Ln10 * total)
		assert.Equal(t, LowerLimit, got.Flag)
		assert.InDelta(t, math.Log10(total), got.LogN, 1e-12)
		assert.InDelta(t, wantSig, got.Sigma, 1e-12)
	})

	t.Run("upper limit partner is excluded", func(t *testing.T) {
		a := store(t, row(mgII, NewLowerLimit(13.5)))
		b := store(t, row(mgII, NewUpperLimit(14.0)))

		merged, err := Merge(b, a)
		require.NoError(t, err)

		assert.Equal(t, NewLowerLimit(13.5), mustGet(t, merged, mgII))
		assert.True(t, merged.Note(mgII).Has(NoteUnconstrainedLimit))
	})

	t.Run("two saturated components add", func(t *testing.T) {
		a := store(t, row(mgII, NewLowerLimit(13.5)))
		merged, err := Merge(a, a)
		require.NoError(t, err)
		assert.InDelta(t, 13.5+math.Log10(2), mustGet(t, merged, mgII).LogN, 1e-12)
		assert.Equal(t, LowerLimit, mustGet(t, merged, mgII).Flag)
	})
}

func TestMergeBlend(t *testing.T) {
	a := store(t, row(feII, NewBlend(13.0, 0.1)))
	b := store(t, row(feII, NewDetection(13.0, 0.1)))
	u := store(t, row(feII, NewUpperLimit(12.0)))

	merged, err := Merge(a, b)
	require.NoError(t, err)
	got := mustGet(t, merged, feII)
	assert.Equal(t, Blend, got.Flag)
	assert.InDelta(t, 13.0+math.Log10(2), got.LogN, 1e-12)

	merged, err = Merge(a, u)
	require.NoError(t, err)
	assert.Equal(t, NewBlend(13.0, 0.1), mustGet(t, merged, feII))
	assert.True(t, merged.Note(feII).Has(NoteUnconstrainedLimit))
}

func TestMergeKeepsNotes(t *testing.T) {
	a := store(t, row(cIV, NewDetection(13.0, 0.1)))
	b := store(t, row(cIV, NewUpperLimit(12.0)))
	c := store(t, row(cIV, NewDetection(12.8, 0.1)))

	ab, err := Merge(a, b)
	require.NoError(t, err)
	abc, err := Merge(ab, c)
	require.NoError(t, err)

	assert.True(t, abc.Note(cIV).Has(NoteUnconstrainedLimit))
	assert.Equal(t, Detection, mustGet(t, abc, cIV).Flag)
}

func TestMergeAllFoldOrder(t *testing.T) {
	sat := store(t, row(mgII, Measurement{LogN: 13.5, Sigma: 0.2, Flag: LowerLimit}))
	d1 := store(t, row(mgII, NewDetection(13.0, 0.1)))
	d2 := store(t, row(mgII, NewDetection(12.8, 0.1)))

	t.Run("empty fold", func(t *testing.T) {
		s, err := MergeAll()
		require.NoError(t, err)
		assert.Zero(t, s.Len())
	})

	t.Run("single store is carried", func(t *testing.T) {
		s, err := MergeAll(d1)
		require.NoError(t, err)
		assert.True(t, s.Equal(d1, 0))
	})

	// Left fold: once a saturated component is in the accumulator, its sigma
	// is dropped at the next step, so detections listed after it keep only
	// their own uncertainty.
	satFirst, err := MergeAll(sat, d1, d2)
	require.NoError(t, err)
	detFirst, err := MergeAll(d1, d2, sat)
	require.NoError(t, err)

	a := mustGet(t, satFirst, mgII)
	b := mustGet(t, detFirst, mgII)
	assert.Equal(t, LowerLimit, a.Flag)
	assert.Equal(t, LowerLimit, b.Flag)
	assert.InDelta(t, a.LogN, b.LogN, 1e-12)

	total := math.Pow(10, 13.5) + math.Pow(10, 13.0) + math.Pow(10, 12.8)
	d2Lin := math.Ln10 * math.Pow(10, 12.8) * 0.1
	d1Lin := math.Ln10 * math.Pow(10, 13.0) * 0.1
	assert.InDelta(t, d2Lin/(math.Ln10*total), a.Sigma, 1e-12)
	assert.InDelta(t, math.Hypot(d1Lin, d2Lin)/(math.Ln10*total), b.Sigma, 1e-12)
	assert.NotEqual(t, a.Sigma, b.Sigma)
}

func TestSumCeilings(t *testing.T) {
	got, err := SumCeilings(NewUpperLimit(12.0), NewUpperLimit(12.0))
	require.NoError(t, err)
	assert.Equal(t, UpperLimit, got.Flag)
	assert.InDelta(t, 12.0+math.Log10(2), got.LogN, 1e-12)

	_, err = SumCeilings(NewUpperLimit(12.0), NewDetection(12, 0.1))
	assert.Error(t, err)
	_, err = SumCeilings()
	assert.Error(t, err)
}
