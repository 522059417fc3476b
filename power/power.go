// Package power estimates the power of a one-sample, lower-tailed t-test by
// exhaustively enumerating every subsample of a given size drawn, without
// replacement, from a small observation set.
package power

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/domino14/tpower/stats"
)

const (
	DefaultAlpha = 0.05
	// DefaultMaxCombinations bounds the enumeration. The estimator is meant
	// for toy datasets; anything bigger is almost certainly a mistake.
	DefaultMaxCombinations = 5_000_000

	// maxPrealloc caps the capacity TStatistics reserves up front.
	maxPrealloc = 1 << 20
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrTooManyCombinations = errors.New("too many combinations")
)

// Result holds the detailed outcome of one estimation.
type Result struct {
	N             int                    `json:"population" yaml:"population"`
	Size          int                    `json:"size" yaml:"size"`
	Mu            float64                `json:"mu" yaml:"mu"`
	Alpha         float64                `json:"alpha" yaml:"alpha"`
	CriticalValue float64                `json:"critical_value" yaml:"critical_value"`
	Convention    stats.StdDevConvention `json:"convention" yaml:"convention"`
	Total         int                    `json:"combinations" yaml:"combinations"`
	Rejected      int                    `json:"rejected" yaml:"rejected"`
	Degenerate    int                    `json:"degenerate" yaml:"degenerate"`
	Power         float64                `json:"power" yaml:"power"`
}

type options struct {
	convention      stats.StdDevConvention
	maxCombinations int
	workers         int
}

func defaultOptions() options {
	return options{
		convention:      stats.Population,
		maxCombinations: DefaultMaxCombinations,
		workers:         4,
	}
}

// Option customizes Estimate, TStatistics and Sweep.
type Option func(*options)

// WithConvention picks the standard deviation divisor. The default,
// stats.Population, divides by n while the critical value still uses n-1
// degrees of freedom.
func WithConvention(c stats.StdDevConvention) Option {
	return func(o *options) { o.convention = c }
}

// WithMaxCombinations caps C(N, n). Values < 1 remove the cap.
func WithMaxCombinations(k int) Option {
	return func(o *options) { o.maxCombinations = k }
}

// WithWorkers bounds the number of sizes a Sweep evaluates at once.
func WithWorkers(w int) Option {
	return func(o *options) { o.workers = w }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EstimatePower returns the fraction of size-n subsamples of observations
// for which a lower-tailed one-sample t-test against mu rejects at level
// alpha, using the population standard deviation convention.
func EstimatePower(observations []float64, n int, mu, alpha float64) (float64, error) {
	res, err := Estimate(observations, n, mu, alpha)
	if err != nil {
		return 0, err
	}
	return res.Power, nil
}

// Estimate is EstimatePower with options and the full set of counts.
func Estimate(observations []float64, n int, mu, alpha float64, opts ...Option) (*Result, error) {
	o := buildOptions(opts)
	if _, err := validate(observations, n, mu, o); err != nil {
		return nil, err
	}
	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("%w: alpha %v must be in (0, 1)", ErrInvalidArgument, alpha)
	}
	crit := stats.TCritical(alpha, n-1)

	res := &Result{
		N:             len(observations),
		Size:          n,
		Mu:            mu,
		Alpha:         alpha,
		CriticalValue: crit,
		Convention:    o.convention,
	}

	forEachSubsample(observations, n, o.convention, func(mean, sd float64) {
		res.Total++
		if sd == 0 {
			res.Degenerate++
			// All values equal: the statistic is undefined, so only a
			// subsample sitting exactly on mu fails to reject.
			if mean != mu {
				res.Rejected++
			}
			return
		}
		if tStatistic(mean, sd, n, mu) <= -crit {
			res.Rejected++
		}
	})
	res.Power = float64(res.Rejected) / float64(res.Total)

	log.Debug().Int("size", n).Int("combinations", res.Total).
		Int("rejected", res.Rejected).Int("degenerate", res.Degenerate).
		Float64("critical", crit).Float64("power", res.Power).Msg("estimated-power")
	return res, nil
}

// TStatistics returns the t statistic of every size-n subsample whose
// standard deviation is non-zero, in enumeration order.
func TStatistics(observations []float64, n int, mu float64, opts ...Option) ([]float64, error) {
	o := buildOptions(opts)
	total, err := validate(observations, n, mu, o)
	if err != nil {
		return nil, err
	}
	ts := make([]float64, 0, min(total, maxPrealloc))
	forEachSubsample(observations, n, o.convention, func(mean, sd float64) {
		if sd == 0 {
			return
		}
		ts = append(ts, tStatistic(mean, sd, n, mu))
	})
	return ts, nil
}

// Combinations returns C(N, n), or an error if it cannot be enumerated
// under the given options. Without a cap, C(N, n) must still be small
// enough that computing it cannot overflow an int.
func Combinations(N, n int, opts ...Option) (int, error) {
	o := buildOptions(opts)
	if n < 1 || n > N {
		return 0, fmt.Errorf("%w: subsample size %d must be between 1 and %d", ErrInvalidArgument, n, N)
	}
	logC := combin.LogGeneralizedBinomial(float64(N), float64(n))
	if o.maxCombinations > 0 {
		if logC > math.Log(float64(o.maxCombinations))+stats.Epsilon {
			return 0, fmt.Errorf("%w: C(%d, %d) exceeds the limit of %d", ErrTooManyCombinations, N, n, o.maxCombinations)
		}
	} else if logC > math.Log(math.MaxInt)-math.Log(float64(N+1)) {
		// combin.Binomial multiplies by at most N before dividing.
		return 0, fmt.Errorf("%w: C(%d, %d) does not fit in an int", ErrTooManyCombinations, N, n)
	}
	return combin.Binomial(N, n), nil
}

func tStatistic(mean, sd float64, n int, mu float64) float64 {
	return (mean - mu) / (sd / math.Sqrt(float64(n)))
}

// validate checks the inputs and returns C(N, n).
func validate(observations []float64, n int, mu float64, o options) (int, error) {
	if len(observations) == 0 {
		return 0, fmt.Errorf("%w: observations must not be empty", ErrInvalidArgument)
	}
	for i, v := range observations {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: observation %d is %v", ErrInvalidArgument, i, v)
		}
	}
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return 0, fmt.Errorf("%w: mu is %v", ErrInvalidArgument, mu)
	}
	if n == 1 {
		return 0, fmt.Errorf("%w: subsample size 1 leaves no degrees of freedom", ErrInvalidArgument)
	}
	return Combinations(len(observations), n, WithMaxCombinations(o.maxCombinations))
}

// forEachSubsample calls fn with the mean and standard deviation of every
// size-n index combination of observations.
func forEachSubsample(observations []float64, n int, c stats.StdDevConvention, fn func(mean, sd float64)) {
	gen := combin.NewCombinationGenerator(len(observations), n)
	idx := make([]int, n)
	var st stats.Statistic
	for gen.Next() {
		idx = gen.Combination(idx)
		st.Reset()
		for _, i := range idx {
			st.Push(observations[i])
		}
		fn(st.Mean(), st.StdevFor(c))
	}
}
