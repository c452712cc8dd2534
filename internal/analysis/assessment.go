package analysis

import (
	"fmt"

	"gopulse/domain/core"
	"gopulse/domain/stats"
)

// Assess checks value against limit. LowerIsBetter passes at or below the
// limit (runout), HigherIsBetter passes at or above it (supply voltage).
func Assess(metric string, value, limit float64, direction stats.Direction) (stats.Assessment, error) {
	if err := validateValues("value", []float64{value}); err != nil {
		return stats.Assessment{}, err
	}
	if err := validateValues("limit", []float64{limit}); err != nil {
		return stats.Assessment{}, err
	}

	a := stats.Assessment{
		Metric:    metric,
		Value:     value,
		Limit:     limit,
		Direction: direction,
	}

	switch direction {
	case stats.LowerIsBetter:
		a.Margin = limit - value
	case stats.HigherIsBetter:
		a.Margin = value - limit
	default:
		return stats.Assessment{}, core.NewInvalidInputError("direction", fmt.Sprintf("unknown direction %q", direction))
	}

	a.Status = stats.StatusFail
	if a.Margin >= 0 {
		a.Status = stats.StatusPass
	}
	return a, nil
}
