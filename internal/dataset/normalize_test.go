package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeNormalizationScenario(t *testing.T) {
	s := NewStore()
	for _, v := range []float64{1, 5, 3} {
		appendValues(t, s, []float64{v}, []float64{v * 10})
	}
	s.RecomputeNormalization()
	require.True(t, s.Ready())

	profile, _ := s.Profile()
	assert.Equal(t, []float64{1}, profile.InputMin)
	assert.Equal(t, []float64{5}, profile.InputMax)

	assert.InDelta(t, 0.0, s.NormalizeInput([]float64{1})[0], 1e-12)
	assert.InDelta(t, 1.0, s.NormalizeInput([]float64{5})[0], 1e-12)
	assert.InDelta(t, 0.5, s.NormalizeInput([]float64{3})[0], 1e-12)
}

func TestRecomputeNormalizationOnEmptyStore(t *testing.T) {
	s := NewStore()
	s.RecomputeNormalization()
	assert.False(t, s.Ready())
}

func TestMinimumSpreadHoldsForEveryFeature(t *testing.T) {
	s := NewStore()
	appendValues(t, s, []float64{1, -2, 7}, []float64{3, 0})
	appendValues(t, s, []float64{1, 4, 7.0000001}, []float64{3, 1})
	s.RecomputeNormalization()

	profile, ready := s.Profile()
	require.True(t, ready)
	for i := range profile.InputMin {
		assert.GreaterOrEqual(t, profile.InputMax[i]-profile.InputMin[i], MinSpread, "input feature %d", i)
	}
	for i := range profile.OutputMin {
		assert.GreaterOrEqual(t, profile.OutputMax[i]-profile.OutputMin[i], MinSpread, "output feature %d", i)
	}
	assert.Equal(t, 0.5, profile.InputMin[0])
	assert.Equal(t, 1.5, profile.InputMax[0])
}

func TestConstantFeatureNormalizesToHalf(t *testing.T) {
	s := NewStore()
	for _, v := range []float64{-1, 0, 2} {
		appendValues(t, s, []float64{v}, []float64{3.0})
	}
	s.RecomputeNormalization()

	for _, sample := range s.Samples() {
		assert.Equal(t, []float64{0.5}, s.NormalizeOutput(sample.Output))
	}
}

func TestNormalizePassThrough(t *testing.T) {
	s := NewStore()
	appendValues(t, s, []float64{1, 2}, []float64{3})

	v := []float64{7, 8}
	assert.Equal(t, v, s.NormalizeInput(v))
	assert.Equal(t, []float64{9}, s.NormalizeOutput([]float64{9}))
	assert.Equal(t, []float64{9}, s.DenormalizeOutput([]float64{9}))

	appendValues(t, s, []float64{3, 4}, []float64{5})
	s.RecomputeNormalization()
	wrong := []float64{1, 2, 3}
	got := s.NormalizeInput(wrong)
	assert.Equal(t, wrong, got)
	assert.Len(t, got, 3)
	assert.Equal(t, []float64{1, 2}, s.DenormalizeOutput([]float64{1, 2}))
}

func TestOutputRoundTrip(t *testing.T) {
	s := NewStore()
	outputs := [][]float64{
		{-3.5, 0, 120},
		{2.25, 0, 80},
		{0.75, 0, 100.5},
	}
	for _, out := range outputs {
		appendValues(t, s, []float64{1}, out)
	}
	s.RecomputeNormalization()

	for _, v := range [][]float64{{-3.5, 0, 80}, {0, 0, 99.9}, {2.25, 0, 120}, {1.1, 0, 85.25}} {
		normalized := s.NormalizeOutput(v)
		for _, x := range normalized {
			assert.True(t, x >= 0 && x <= 1, "normalized value %f outside unit interval", x)
		}
		restored := s.DenormalizeOutput(normalized)
		require.Len(t, restored, len(v))
		for i := range v {
			assert.InDelta(t, v[i], restored[i], 1e-5)
		}
	}
}

func TestNormalizeExtrapolatesOutsideObservedRange(t *testing.T) {
	s := NewStore()
	appendValues(t, s, []float64{0}, []float64{0})
	appendValues(t, s, []float64{10}, []float64{1})
	s.RecomputeNormalization()

	assert.InDelta(t, 1.5, s.NormalizeInput([]float64{15})[0], 1e-12)
	assert.InDelta(t, -0.5, s.NormalizeInput([]float64{-5})[0], 1e-12)
}

func TestNormalizeGuardsDegenerateBounds(t *testing.T) {
	got := normalize([]float64{4, 4}, []float64{4, 0}, []float64{4, 8})
	assert.Equal(t, 0.5, got[0])
	assert.Equal(t, 0.5, got[1])
	assert.False(t, math.IsNaN(got[0]))
}

func TestProfileCopyOutlivesStoreChanges(t *testing.T) {
	s := NewStore()
	appendValues(t, s, []float64{0, 0}, []float64{10, 100})
	appendValues(t, s, []float64{2, 4}, []float64{20, 300})
	s.RecomputeNormalization()
	profile, ready := s.Profile()
	require.True(t, ready)

	s.Clear()
	assert.Equal(t, []float64{0.5, 0.25}, profile.NormalizeInput([]float64{1, 1}))
	assert.Equal(t, []float64{0.5, 1}, profile.NormalizeOutput([]float64{15, 300}))
	assert.Equal(t, []float64{15, 200}, profile.DenormalizeOutput([]float64{0.5, 0.5}))

	short := []float64{1}
	assert.Equal(t, short, profile.NormalizeInput(short))
	assert.Equal(t, short, profile.DenormalizeOutput(short))
}
