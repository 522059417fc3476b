package power

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// SweepPoint is one (size, power) pair of a sweep.
type SweepPoint struct {
	Size   int     `json:"size" yaml:"size"`
	Power  float64 `json:"power" yaml:"power"`
	Result *Result `json:"result" yaml:"result"`
}

// SizeRange returns the sizes from..to inclusive.
func SizeRange(from, to int) []int {
	if to < from {
		return []int{}
	}
	return lo.RangeFrom(from, to-from+1)
}

// Sweep runs Estimate once per size. Points come back in the order of
// sizes. Sizes are independent, so they are evaluated concurrently; the
// observation slice is only ever read.
func Sweep(ctx context.Context, observations []float64, sizes []int, mu, alpha float64, opts ...Option) ([]SweepPoint, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no sizes to sweep", ErrInvalidArgument)
	}
	o := buildOptions(opts)
	points := make([]SweepPoint, len(sizes))

	g, ctx := errgroup.WithContext(ctx)
	if o.workers > 0 {
		g.SetLimit(o.workers)
	}
	for i, n := range sizes {
		i, n := i, n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Estimate(observations, n, mu, alpha, opts...)
			if err != nil {
				return fmt.Errorf("size %d: %w", n, err)
			}
			points[i] = SweepPoint{Size: n, Power: res.Power, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Msg("sweep-failed")
		return nil, err
	}
	log.Debug().Int("sizes", len(sizes)).Msg("sweep-done")
	return points, nil
}
