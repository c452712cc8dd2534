package analysis

import (
	"fmt"
	"math"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// ComputeGroupStats summarises one sample: count, mean, sample standard
// deviation (n-1 denominator), min, max and median.
//
// A single observation has no measurable spread under the sample
// convention. In that case StdDev is 0 and StdDevDefined is false.
func ComputeGroupStats(sample stats.Sample) (stats.GroupStats, error) {
	label := sample.Label
	if label == "" {
		label = "values"
	}
	if err := validateValues(label, sample.Values); err != nil {
		return stats.GroupStats{}, err
	}

	data := mstats.Float64Data(sample.Values)
	min, err := mstats.Min(data)
	if err != nil {
		return stats.GroupStats{}, wrapLibraryError(label, err)
	}
	max, err := mstats.Max(data)
	if err != nil {
		return stats.GroupStats{}, wrapLibraryError(label, err)
	}

	result := stats.GroupStats{
		Label: sample.Label,
		Count: len(sample.Values),
		Min:   min,
		Max:   max,
	}

	// Identical values: report the value itself rather than a sum/n that
	// may drift by an ulp.
	if min == max {
		result.Mean = min
		result.Median = min
		result.StdDevDefined = result.Count >= 2
		return result, nil
	}

	if result.Mean, err = mstats.Mean(data); err != nil {
		return stats.GroupStats{}, wrapLibraryError(label, err)
	}
	if result.Median, err = mstats.Median(data); err != nil {
		return stats.GroupStats{}, wrapLibraryError(label, err)
	}

	// min != max implies Count >= 2
	sd, err := mstats.StandardDeviationSample(data)
	if err != nil {
		return stats.GroupStats{}, wrapLibraryError(label, err)
	}
	result.StdDev = sd
	result.StdDevDefined = true

	if !allFinite(result.Mean, result.Median, result.StdDev) {
		return stats.GroupStats{}, core.NewInvalidInputError(label, "magnitude out of range, mean or spread overflows")
	}

	return result, nil
}

// validateValues rejects empty input and non-finite values.
func validateValues(field string, values []float64) error {
	if len(values) == 0 {
		return core.NewInvalidInputError(field, "no values")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewInvalidInputError(field, fmt.Sprintf("value %d is not finite (%v)", i, v))
		}
	}
	return nil
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// montanaflynn/stats only errors on empty input, which validateValues
// already rules out.
func wrapLibraryError(field string, err error) error {
	return core.NewInvalidInputError(field, err.Error())
}
