package profiling

import (
	"fmt"
	"math"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinShapeSize is the smallest sample the kurtosis correction is defined for
const MinShapeSize = 4

// normalityAlpha is the p-value below which a column is flagged non-normal
const normalityAlpha = 0.05

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// AnalyzeShape computes quartiles, Tukey outliers, bias-corrected skewness
// and excess kurtosis, and a Jarque-Bera normality check.
func (da *DistributionAnalyzer) AnalyzeShape(sample stats.Sample) (stats.Shape, error) {
	data := sample.Values
	label := sample.Label
	if label == "" {
		label = "values"
	}

	if len(data) < MinShapeSize {
		return stats.Shape{}, core.NewInsufficientDataError(label, len(data), MinShapeSize)
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return stats.Shape{}, core.NewInvalidInputError(label, fmt.Sprintf("value %d is not finite", i))
		}
	}

	shape := stats.Shape{Label: sample.Label}

	// Quartiles for IQR-based outlier detection
	quartiles, err := mstats.Quartile(data)
	if err != nil {
		return stats.Shape{}, core.NewInvalidInputError(label, err.Error())
	}
	shape.Q1 = quartiles.Q1
	shape.Q3 = quartiles.Q3
	shape.IQR = quartiles.Q3 - quartiles.Q1

	outliers, err := mstats.QuartileOutliers(data)
	if err != nil {
		return stats.Shape{}, core.NewInvalidInputError(label, err.Error())
	}
	shape.Outliers = append([]float64{}, outliers.Mild...)
	shape.Extremes = append([]float64{}, outliers.Extreme...)

	// A constant column has no shape beyond its quartiles
	if quartiles.Q1 == quartiles.Q3 && isConstant(data) {
		shape.NormalityP = 1
		return shape, nil
	}

	shape.Skewness = stat.Skew(data, nil)
	shape.Kurtosis = stat.ExKurtosis(data, nil)

	shape.JarqueBera, shape.NormalityP = jarqueBera(len(data), shape.Skewness, shape.Kurtosis)
	shape.LooksNormal = shape.NormalityP > normalityAlpha

	return shape, nil
}

// jarqueBera returns the statistic and its chi-squared(2) upper tail
func jarqueBera(n int, skewness, excessKurtosis float64) (float64, float64) {
	jb := float64(n) / 6 * (skewness*skewness + excessKurtosis*excessKurtosis/4)
	p := distuv.ChiSquared{K: 2}.Survival(jb)
	return jb, math.Max(0, math.Min(1, p))
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}
