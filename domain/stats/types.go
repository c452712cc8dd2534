package stats

// ============================================================================
// INPUTS (constructed per request, never mutated)
// ============================================================================

// Sample is one measured group, e.g. the "Laid" runout readings.
// INVARIANTS:
// - Values is non-empty
// - every value is finite
type Sample struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// NewSample copies values so later mutation by the caller cannot leak in.
func NewSample(label string, values []float64) Sample {
	return Sample{Label: label, Values: append([]float64(nil), values...)}
}

// Len returns the number of observations
func (s Sample) Len() int { return len(s.Values) }

// PairedSample holds an independent variable X and a dependent variable Y.
// INVARIANTS:
// - len(X) == len(Y) >= 2
// - every value is finite
type PairedSample struct {
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
}

// NewPairedSample copies x and y.
func NewPairedSample(xLabel, yLabel string, x, y []float64) PairedSample {
	return PairedSample{
		XLabel: xLabel,
		YLabel: yLabel,
		X:      append([]float64(nil), x...),
		Y:      append([]float64(nil), y...),
	}
}

// Len returns the number of points, or -1 when X and Y disagree.
func (p PairedSample) Len() int {
	if len(p.X) != len(p.Y) {
		return -1
	}
	return len(p.X)
}

// ============================================================================
// RESULTS (derived, immutable)
// ============================================================================

// GroupStats summarises one Sample.
// INVARIANTS:
// - Count >= 1
// - StdDev >= 0, sample (n-1) convention
// - StdDevDefined is false only when Count == 1, in which case StdDev is 0
type GroupStats struct {
	Label         string  `json:"label"`
	Count         int     `json:"count"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"stddev"`
	StdDevDefined bool    `json:"stddev_defined"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Median        float64 `json:"median"`
}

// CV returns the coefficient of variation, or 0 when the mean is 0.
func (g GroupStats) CV() float64 {
	if g.Mean == 0 {
		return 0
	}
	return g.StdDev / g.Mean
}

// LinearFit is an ordinary-least-squares line through a PairedSample.
// INVARIANTS:
// - Correlation in [-1, 1]
// - RSquared == Correlation^2
// - SlopeStdErr and SlopePValue are zero when N < 3
type LinearFit struct {
	XLabel      string  `json:"x_label,omitempty"`
	YLabel      string  `json:"y_label,omitempty"`
	Slope       float64 `json:"slope"`
	Intercept   float64 `json:"intercept"`
	Correlation float64 `json:"correlation"`
	RSquared    float64 `json:"r_squared"`
	N           int     `json:"n"`
	SlopeStdErr float64 `json:"slope_std_err"`
	SlopePValue float64 `json:"slope_p_value"`
}

// Predict evaluates the fitted line at x.
func (f LinearFit) Predict(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// Comparison is a Welch two-sample comparison of group means.
type Comparison struct {
	A              GroupStats `json:"a"`
	B              GroupStats `json:"b"`
	MeanDifference float64    `json:"mean_difference"` // A.Mean - B.Mean
	TStatistic     float64    `json:"t_statistic"`
	DegreesFreedom float64    `json:"degrees_of_freedom"`
	PValue         float64    `json:"p_value"`  // two-sided
	CohensD        float64    `json:"cohens_d"` // pooled standard deviation
}

// Significant reports whether the difference clears alpha.
func (c Comparison) Significant(alpha float64) bool {
	return c.PValue < alpha
}

// Direction says which side of a limit is acceptable.
type Direction string

const (
	LowerIsBetter  Direction = "lower_is_better"
	HigherIsBetter Direction = "higher_is_better"
)

// Status is the verdict of an Assessment.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Assessment compares one metric against a limit.
// Margin is positive when the value is on the acceptable side.
type Assessment struct {
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Limit     float64   `json:"limit"`
	Direction Direction `json:"direction"`
	Status    Status    `json:"status"`
	Margin    float64   `json:"margin"`
}

// Passed is shorthand for Status == StatusPass
func (a Assessment) Passed() bool { return a.Status == StatusPass }

// Shape describes how a sample is distributed around its median.
type Shape struct {
	Label       string    `json:"label"`
	Q1          float64   `json:"q1"`
	Q3          float64   `json:"q3"`
	IQR         float64   `json:"iqr"`
	Skewness    float64   `json:"skewness"`
	Kurtosis    float64   `json:"excess_kurtosis"`
	Outliers    []float64 `json:"outliers"` // between 1.5 and 3 IQR beyond the quartiles
	Extremes    []float64 `json:"extremes"` // beyond 3 IQR of the quartiles
	JarqueBera  float64   `json:"jarque_bera"`
	NormalityP  float64   `json:"normality_p"`
	LooksNormal bool      `json:"looks_normal"`
}

// ColumnSummary pairs a table column with its stats, or the reason it could not be summarised.
// Shape is nil for columns too short to profile.
type ColumnSummary struct {
	Name  string     `json:"name"`
	Stats GroupStats `json:"stats"`
	Shape *Shape     `json:"shape,omitempty"`
	Error string     `json:"error,omitempty"`
}
