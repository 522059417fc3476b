package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	zValue := dist.Quantile(area)
	return zValue
}

// TCritical returns the one-tailed critical value of Student's t distribution
// with df degrees of freedom, i.e. the (1-alpha) quantile. It returns NaN
// when df < 1 or alpha is outside (0, 1).
func TCritical(alpha float64, df int) float64 {
	if df < 1 || !(alpha > 0 && alpha < 1) {
		return math.NaN()
	}
	dist := distuv.StudentsT{
		Mu:    0,
		Sigma: 1,
		Nu:    float64(df),
	}
	return dist.Quantile(1 - alpha)
}
