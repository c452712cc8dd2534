package analysis

import (
	"fmt"
	"math"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ComputeLinearFit fits y = slope*x + intercept by ordinary least squares
// and reports the Pearson correlation of the pair.
//
// Errors:
//   - ErrInvalidInput: len(X) != len(Y), fewer than two points, a
//     non-finite value, or magnitudes whose squares overflow
//   - ErrDegenerateInput: every X is identical (slope undefined) or every Y
//     is identical (correlation undefined), including spreads too small to
//     square without underflowing to zero
func ComputeLinearFit(pair stats.PairedSample) (stats.LinearFit, error) {
	xField, yField := fieldName(pair.XLabel, "x"), fieldName(pair.YLabel, "y")

	if len(pair.X) != len(pair.Y) {
		return stats.LinearFit{}, core.NewInvalidInputError("pair",
			fmt.Sprintf("%s has %d values but %s has %d", xField, len(pair.X), yField, len(pair.Y)))
	}
	if len(pair.X) < 2 {
		return stats.LinearFit{}, core.NewInvalidInputError("pair",
			fmt.Sprintf("need at least 2 points, got %d", len(pair.X)))
	}
	if err := validateValues(xField, pair.X); err != nil {
		return stats.LinearFit{}, err
	}
	if err := validateValues(yField, pair.Y); err != nil {
		return stats.LinearFit{}, err
	}
	if isConstant(pair.X) {
		return stats.LinearFit{}, core.NewDegenerateInputError(xField, "all values are identical, slope is undefined")
	}
	if isConstant(pair.Y) {
		return stats.LinearFit{}, core.NewDegenerateInputError(yField, "all values are identical, correlation is undefined")
	}

	n := float64(len(pair.X))
	meanX, err := mstats.Mean(pair.X)
	if err != nil {
		return stats.LinearFit{}, wrapLibraryError(xField, err)
	}
	meanY, err := mstats.Mean(pair.Y)
	if err != nil {
		return stats.LinearFit{}, wrapLibraryError(yField, err)
	}

	// Centered sums: algebraically the same closed form as
	// (nΣXY − ΣXΣY)/(nΣX² − (ΣX)²) without the cancellation.
	var sxx, sxy, syy float64
	for i := range pair.X {
		dx := pair.X[i] - meanX
		dy := pair.Y[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if !allFinite(sxx, sxy, syy) {
		return stats.LinearFit{}, core.NewInvalidInputError("pair", "magnitude out of range, sums of squares overflow")
	}
	if sxx == 0 {
		return stats.LinearFit{}, core.NewDegenerateInputError(xField, "zero variance")
	}
	if syy == 0 {
		return stats.LinearFit{}, core.NewDegenerateInputError(yField, "zero variance")
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX
	r := clamp(sxy/(math.Sqrt(sxx)*math.Sqrt(syy)), -1, 1)
	if !allFinite(slope, intercept, r) {
		return stats.LinearFit{}, core.NewInvalidInputError("pair", "magnitude out of range")
	}

	fit := stats.LinearFit{
		XLabel:      pair.XLabel,
		YLabel:      pair.YLabel,
		Slope:       slope,
		Intercept:   intercept,
		Correlation: r,
		RSquared:    r * r,
		N:           len(pair.X),
	}

	if len(pair.X) >= 3 {
		fit.SlopeStdErr, fit.SlopePValue = slopeInference(n, sxx, sxy, syy, slope)
	}

	return fit, nil
}

// Predict evaluates fit at x.
func Predict(fit stats.LinearFit, x float64) float64 {
	return fit.Predict(x)
}

// Residuals returns y - Predict(x) for every point in pair. The pair is
// assumed to have passed ComputeLinearFit.
func Residuals(fit stats.LinearFit, pair stats.PairedSample) []float64 {
	n := len(pair.X)
	if len(pair.Y) < n {
		n = len(pair.Y)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = pair.Y[i] - fit.Predict(pair.X[i])
	}
	return out
}

// slopeInference returns the standard error of the slope and the two-sided
// p-value of H0: slope == 0 on n-2 degrees of freedom.
func slopeInference(n, sxx, sxy, syy, slope float64) (stdErr, pValue float64) {
	sse := syy - slope*sxy
	if sse < 0 {
		sse = 0
	}
	stdErr = math.Sqrt(sse / (n - 2) / sxx)
	if stdErr == 0 {
		return 0, 0
	}
	t := slope / stdErr
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	return stdErr, 2 * dist.Survival(math.Abs(t))
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func fieldName(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
