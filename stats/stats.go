package stats

import (
	"errors"
	"math"
)

const (
	Epsilon = 1e-6
)

var ErrUnknownConvention = errors.New("unknown standard deviation convention")

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// StdDevConvention selects the divisor used for the standard deviation.
type StdDevConvention int

const (
	// Population divides the sum of squared deviations by n.
	Population StdDevConvention = iota
	// Sample divides by n-1 (Bessel's correction).
	Sample
)

func (c StdDevConvention) String() string {
	switch c {
	case Population:
		return "population"
	case Sample:
		return "sample"
	}
	return "unknown"
}

func (c StdDevConvention) MarshalText() ([]byte, error) {
	if c != Population && c != Sample {
		return nil, ErrUnknownConvention
	}
	return []byte(c.String()), nil
}

func (c *StdDevConvention) UnmarshalText(text []byte) error {
	parsed, err := ParseConvention(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseConvention is the inverse of StdDevConvention.String.
func ParseConvention(s string) (StdDevConvention, error) {
	switch s {
	case "population", "pop":
		return Population, nil
	case "sample":
		return Sample, nil
	}
	return Population, ErrUnknownConvention
}

// Statistic is a running mean/variance accumulator.
type Statistic struct {
	totalIterations int

	// For Welford's algorithm:
	oldM float64
	newM float64
	oldS float64
	newS float64
}

func (s *Statistic) Push(val float64) {
	s.totalIterations++
	if s.totalIterations == 1 {
		s.oldM = val
		s.newM = val
		s.oldS = 0
		s.newS = 0
	} else {
		s.newM = s.oldM + (val-s.oldM)/float64(s.totalIterations)
		s.newS = s.oldS + (val-s.oldM)*(val-s.newM)
		s.oldM = s.newM
		s.oldS = s.newS
	}
}

// Reset clears the accumulator so it can be reused without allocating.
func (s *Statistic) Reset() {
	*s = Statistic{}
}

func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.newM
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.newS / float64(s.totalIterations-1)
}

// PopVariance is the variance with divisor n.
func (s *Statistic) PopVariance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.newS / float64(s.totalIterations)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) PopStdev() float64 {
	return math.Sqrt(s.PopVariance())
}

func (s *Statistic) StdevFor(c StdDevConvention) float64 {
	if c == Sample {
		return s.Stdev()
	}
	return s.PopStdev()
}

func (s *Statistic) Iterations() int {
	return s.totalIterations
}
