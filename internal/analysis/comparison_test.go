package analysis

import (
	"math"
	"testing"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareGroups_KnownValues(t *testing.T) {
	a := stats.NewSample("A", []float64{1, 2, 3, 4, 5})
	b := stats.NewSample("B", []float64{3, 4, 5, 6, 7})

	cmp, err := CompareGroups(a, b)
	require.NoError(t, err)

	// Equal variances (2.5) and sizes: t = -2 / sqrt(1), df = 8.
	assert.InDelta(t, -2.0, cmp.MeanDifference, 1e-12)
	assert.InDelta(t, -2.0, cmp.TStatistic, 1e-12)
	assert.InDelta(t, 8.0, cmp.DegreesFreedom, 1e-12)
	assert.InDelta(t, -2/math.Sqrt(2.5), cmp.CohensD, 1e-12)
	// two-sided p for t=2 on 8 df
	assert.InDelta(t, 0.0805, cmp.PValue, 5e-4)
	assert.False(t, cmp.Significant(0.05))
	assert.True(t, cmp.Significant(0.10))
}

func TestCompareGroups_DistortionGroups(t *testing.T) {
	hung := []float64{3, 4, 5, 5, 6, 6, 6, 7, 7, 7, 7, 8, 8, 8, 8, 9, 9, 9, 10, 10, 11, 12}

	cmp, err := CompareGroups(stats.NewSample("Laid", laidRunout), stats.NewSample("Hung", hung))
	require.NoError(t, err)

	assert.Equal(t, "Laid", cmp.A.Label)
	assert.Equal(t, 38, cmp.A.Count)
	assert.Equal(t, 22, cmp.B.Count)
	assert.Greater(t, cmp.MeanDifference, 0.0)
	assert.Greater(t, cmp.TStatistic, 0.0)
	assert.True(t, cmp.Significant(0.001))
	assert.Greater(t, cmp.CohensD, 0.8)
}

func TestCompareGroups_Errors(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want error
	}{
		{"empty group", nil, []float64{1, 2}, core.ErrInvalidInput},
		{"single value group", []float64{1}, []float64{1, 2}, core.ErrInsufficientData},
		{"non-finite", []float64{1, math.NaN()}, []float64{1, 2}, core.ErrInvalidInput},
		{"both flat", []float64{2, 2, 2}, []float64{5, 5}, core.ErrDegenerateInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompareGroups(stats.NewSample("a", tt.a), stats.NewSample("b", tt.b))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompareGroups_OneFlatGroup(t *testing.T) {
	cmp, err := CompareGroups(stats.NewSample("a", []float64{4, 4, 4}), stats.NewSample("b", []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, cmp.MeanDifference, 1e-12)
	assert.InDelta(t, 2.0, cmp.DegreesFreedom, 1e-12)
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		limit     float64
		direction stats.Direction
		status    stats.Status
		margin    float64
	}{
		{"runout under limit", 11.5, 15, stats.LowerIsBetter, stats.StatusPass, 3.5},
		{"runout on limit", 15, 15, stats.LowerIsBetter, stats.StatusPass, 0},
		{"runout over limit", 16, 15, stats.LowerIsBetter, stats.StatusFail, -1},
		{"low voltage", 3.1, 3.3, stats.HigherIsBetter, stats.StatusFail, -0.2},
		{"optimal voltage", 3.4, 3.3, stats.HigherIsBetter, stats.StatusPass, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assess("metric", tt.value, tt.limit, tt.direction)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.status == stats.StatusPass, got.Passed())
			assert.InDelta(t, tt.margin, got.Margin, 1e-12)
		})
	}
}

func TestAssess_InvalidInput(t *testing.T) {
	_, err := Assess("v", math.NaN(), 1, stats.LowerIsBetter)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Assess("v", 1, math.Inf(1), stats.LowerIsBetter)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Assess("v", 1, 2, stats.Direction("sideways"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
