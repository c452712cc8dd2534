package analysis

import (
	"math"
	"math/rand"
	"testing"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gstat "gonum.org/v1/gonum/stat"
)

// laidRunout is the 38-reading runout sample used by the distortion lesson.
var laidRunout = []float64{
	5, 8, 8, 9, 9, 9, 9, 10, 10, 10, 11, 11, 11, 11, 11, 11, 11, 12, 12, 12,
	12, 13, 13, 13, 13, 14, 14, 14, 15, 15, 15, 15, 16, 17, 17, 18, 19, 27,
}

func TestComputeGroupStats_LaidRunout(t *testing.T) {
	got, err := ComputeGroupStats(stats.NewSample("Laid", laidRunout))
	require.NoError(t, err)

	assert.Equal(t, "Laid", got.Label)
	assert.Equal(t, 38, got.Count)
	assert.InDelta(t, 12.63, got.Mean, 0.01)
	assert.InDelta(t, 3.85, got.StdDev, 0.01)
	assert.True(t, got.StdDevDefined)
	assert.Equal(t, 5.0, got.Min)
	assert.Equal(t, 27.0, got.Max)
	assert.Equal(t, 12.0, got.Median)
}

func TestComputeGroupStats_MatchesIndependentFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(200)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.NormFloat64()*3 + 10
		}

		got, err := ComputeGroupStats(stats.NewSample("trial", values))
		require.NoError(t, err)

		var sum float64
		for _, v := range values {
			sum += v
		}
		mean := sum / float64(n)
		var ss float64
		for _, v := range values {
			ss += (v - mean) * (v - mean)
		}
		want := math.Sqrt(ss / float64(n-1))

		assert.InDelta(t, mean, got.Mean, 1e-9, "trial %d", trial)
		assert.InDelta(t, want, got.StdDev, 1e-9, "trial %d", trial)
		assert.InDelta(t, gstat.StdDev(values, nil), got.StdDev, 1e-9, "trial %d", trial)
		assert.GreaterOrEqual(t, got.StdDev, 0.0)
	}
}

func TestComputeGroupStats_RepeatedValueHasZeroSpread(t *testing.T) {
	for _, v := range []float64{0, 0.1, -3.7, 1e9} {
		got, err := ComputeGroupStats(stats.NewSample("flat", []float64{v, v, v, v, v}))
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.StdDev)
		assert.Equal(t, v, got.Mean)
		assert.True(t, got.StdDevDefined)
	}
}

func TestComputeGroupStats_SingleValue(t *testing.T) {
	got, err := ComputeGroupStats(stats.NewSample("one", []float64{4.2}))
	require.NoError(t, err)

	assert.Equal(t, 1, got.Count)
	assert.Equal(t, 4.2, got.Mean)
	assert.Equal(t, 0.0, got.StdDev)
	assert.False(t, got.StdDevDefined)
}

func TestComputeGroupStats_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"empty", nil},
		{"nan", []float64{1, math.NaN(), 3}},
		{"positive infinity", []float64{math.Inf(1)}},
		{"negative infinity", []float64{2, math.Inf(-1)}},
		{"mean overflows", []float64{1e308, 1.5e308}},
		{"spread overflows", []float64{-1.5e308, 1.5e308}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeGroupStats(stats.NewSample("bad", tt.values))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestComputeGroupStats_LargeIdenticalValues(t *testing.T) {
	got, err := ComputeGroupStats(stats.NewSample("big", []float64{1.5e308, 1.5e308}))
	require.NoError(t, err)
	assert.Equal(t, 1.5e308, got.Mean)
	assert.Equal(t, 0.0, got.StdDev)
}

func TestComputeGroupStats_Idempotent(t *testing.T) {
	s := stats.NewSample("Laid", laidRunout)
	first, err := ComputeGroupStats(s)
	require.NoError(t, err)
	second, err := ComputeGroupStats(s)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.Mean), math.Float64bits(second.Mean))
	assert.Equal(t, math.Float64bits(first.StdDev), math.Float64bits(second.StdDev))
	assert.Equal(t, first, second)
}

func TestComputeGroupStats_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := ComputeGroupStats(stats.Sample{Label: "unsorted", Values: values})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}
