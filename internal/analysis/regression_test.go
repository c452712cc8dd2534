package analysis

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gstat "gonum.org/v1/gonum/stat"
)

const tol = 1e-9

func TestComputeLinearFit_Collinear(t *testing.T) {
	pair := stats.NewPairedSample("x", "y", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})

	fit, err := ComputeLinearFit(pair)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, tol)
	assert.InDelta(t, 0.0, fit.Intercept, tol)
	assert.InDelta(t, 1.0, fit.Correlation, tol)
	assert.InDelta(t, 1.0, fit.RSquared, tol)
	assert.Equal(t, 4, fit.N)
	assert.Equal(t, 0.0, fit.SlopeStdErr)

	for _, x := range []float64{-10, 0, 2.5, 7, 1e3} {
		assert.InDelta(t, 2*x, Predict(fit, x), 1e-6, "x=%v", x)
	}
}

func TestComputeLinearFit_NegativeSlope(t *testing.T) {
	pair := stats.NewPairedSample("x", "y", []float64{0, 1, 2, 3}, []float64{10, 7, 4, 1})

	fit, err := ComputeLinearFit(pair)
	require.NoError(t, err)

	assert.InDelta(t, -3.0, fit.Slope, tol)
	assert.InDelta(t, 10.0, fit.Intercept, tol)
	assert.InDelta(t, -1.0, fit.Correlation, tol)
}

func TestComputeLinearFit_TwoPoints(t *testing.T) {
	fit, err := ComputeLinearFit(stats.NewPairedSample("", "", []float64{0, 2}, []float64{1, 5}))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, tol)
	assert.InDelta(t, 1.0, fit.Intercept, tol)
	assert.Equal(t, 2, fit.N)
	assert.Equal(t, 0.0, fit.SlopePValue)
}

func TestComputeLinearFit_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 120
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 10 + rng.Float64()*90
		y[i] = 0.2*x[i] + 3 + rng.NormFloat64()*2
	}

	fit, err := ComputeLinearFit(stats.NewPairedSample("torque", "tension", x, y))
	require.NoError(t, err)

	alpha, beta := gstat.LinearRegression(x, y, nil, false)
	assert.InDelta(t, beta, fit.Slope, 1e-9)
	assert.InDelta(t, alpha, fit.Intercept, 1e-9)
	assert.InDelta(t, gstat.Correlation(x, y, nil), fit.Correlation, 1e-9)
	assert.InDelta(t, gstat.RSquared(x, y, nil, alpha, beta), fit.RSquared, 1e-9)

	assert.Greater(t, fit.SlopeStdErr, 0.0)
	assert.Less(t, fit.SlopePValue, 1e-6)
	assert.Equal(t, "torque", fit.XLabel)
	assert.Equal(t, "tension", fit.YLabel)
}

func TestComputeLinearFit_Uncorrelated(t *testing.T) {
	// Symmetric around x=2: no linear trend.
	pair := stats.NewPairedSample("x", "y", []float64{0, 1, 2, 3, 4}, []float64{4, 1, 0, 1, 4})

	fit, err := ComputeLinearFit(pair)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, fit.Slope, tol)
	assert.InDelta(t, 2.0, fit.Intercept, tol)
	assert.InDelta(t, 0.0, fit.Correlation, tol)
	assert.InDelta(t, 1.0, fit.SlopePValue, 1e-9)
}

func TestComputeLinearFit_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"constant x", []float64{1, 1, 1}, []float64{3, 5, 7}},
		{"constant fractional x", []float64{0.1, 0.1, 0.1, 0.1}, []float64{1, 2, 3, 4}},
		{"constant y", []float64{1, 2, 3}, []float64{5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLinearFit(stats.NewPairedSample("x", "y", tt.x, tt.y))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrDegenerateInput)
			assert.NotErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestComputeLinearFit_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"empty", nil, nil},
		{"single point", []float64{1}, []float64{2}},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}},
		{"nan in x", []float64{1, math.NaN(), 3}, []float64{1, 2, 3}},
		{"inf in y", []float64{1, 2, 3}, []float64{1, math.Inf(1), 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLinearFit(stats.NewPairedSample("x", "y", tt.x, tt.y))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestComputeLinearFit_MagnitudeOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		x, y    []float64
		wantErr error
	}{
		{"x squares overflow", []float64{1e200, 2e200, 3e200}, []float64{1, 2, 3}, core.ErrInvalidInput},
		{"y squares overflow", []float64{1, 2, 3}, []float64{-1e200, 0, 1e200}, core.ErrInvalidInput},
		{"y spread underflows", []float64{1, 2, 3}, []float64{1e-170, 2e-170, 3e-170}, core.ErrDegenerateInput},
		{"x spread underflows", []float64{1e-170, 2e-170, 3e-170}, []float64{1, 2, 3}, core.ErrDegenerateInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, err := ComputeLinearFit(stats.NewPairedSample("x", "y", tt.x, tt.y))
			require.Error(t, err, "got fit %+v", fit)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComputeLinearFit_SmallButRepresentableSpread(t *testing.T) {
	// Squares stay normal even though Σx·y is tiny.
	fit, err := ComputeLinearFit(stats.NewPairedSample("x", "y",
		[]float64{1e-100, 2e-100, 3e-100}, []float64{1e-100, 2e-100, 3e-100}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Correlation, 1e-9)
}

func TestComputeLinearFit_Idempotent(t *testing.T) {
	pair := stats.NewPairedSample("x", "y", []float64{1.5, 2.25, 3.1, 4.8, 6.0}, []float64{3.3, 4.1, 7.9, 9.2, 12.6})

	first, err := ComputeLinearFit(pair)
	require.NoError(t, err)
	second, err := ComputeLinearFit(pair)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.Slope), math.Float64bits(second.Slope))
	assert.Equal(t, math.Float64bits(first.Intercept), math.Float64bits(second.Intercept))
	assert.Equal(t, math.Float64bits(first.Correlation), math.Float64bits(second.Correlation))
}

func TestComputeLinearFit_ConcurrentCallers(t *testing.T) {
	pair := stats.NewPairedSample("x", "y", []float64{1, 2, 3, 4, 5}, []float64{2.1, 3.9, 6.2, 7.8, 10.1})
	want, err := ComputeLinearFit(pair)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]stats.LinearFit, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ComputeLinearFit(pair)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestResiduals(t *testing.T) {
	pair := stats.NewPairedSample("x", "y", []float64{1, 2, 3}, []float64{2, 5, 6})
	fit, err := ComputeLinearFit(pair)
	require.NoError(t, err)

	res := Residuals(fit, pair)
	require.Len(t, res, 3)

	var sum float64
	for _, r := range res {
		sum += r
	}
	assert.InDelta(t, 0.0, sum, 1e-9, "OLS residuals sum to zero")
}
