package analysis

import (
	"math"

	"gopulse/domain/core"
	"gopulse/domain/stats"

	"gonum.org/v1/gonum/stat/distuv"
)

// CompareGroups runs Welch's t-test for a difference in means between a and
// b, which need not share a variance. Each group needs at least two values.
func CompareGroups(a, b stats.Sample) (stats.Comparison, error) {
	statsA, err := ComputeGroupStats(a)
	if err != nil {
		return stats.Comparison{}, err
	}
	statsB, err := ComputeGroupStats(b)
	if err != nil {
		return stats.Comparison{}, err
	}
	for _, g := range []stats.GroupStats{statsA, statsB} {
		if g.Count < 2 {
			return stats.Comparison{}, core.NewInsufficientDataError(fieldName(g.Label, "group"), g.Count, 2)
		}
	}

	n1, n2 := float64(statsA.Count), float64(statsB.Count)
	v1, v2 := statsA.StdDev*statsA.StdDev, statsB.StdDev*statsB.StdDev
	q1, q2 := v1/n1, v2/n2

	se := math.Sqrt(q1 + q2)
	if se == 0 {
		return stats.Comparison{}, core.NewDegenerateInputError("groups", "both groups have zero variance")
	}

	diff := statsA.Mean - statsB.Mean
	t := diff / se
	// Welch-Satterthwaite
	df := (q1 + q2) * (q1 + q2) / (q1*q1/(n1-1) + q2*q2/(n2-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))

	pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))

	return stats.Comparison{
		A:              statsA,
		B:              statsB,
		MeanDifference: diff,
		TStatistic:     t,
		DegreesFreedom: df,
		PValue:         clamp(p, 0, 1),
		CohensD:        diff / pooled,
	}, nil
}
