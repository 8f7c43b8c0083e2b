package sweep

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/san-kum/imexrk/internal/config"
	"github.com/san-kum/imexrk/internal/dynamo"
	"github.com/san-kum/imexrk/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// ParameterSweep repeats the Base run for each value of one problem
// parameter.
type ParameterSweep struct {
	Base    *config.Config
	Param   string
	Values  []float64
	Workers int
}

type Point struct {
	Value  float64
	Result *experiment.Result
}

// Linspace returns n values evenly spaced over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + (stop-start)*float64(i)/float64(n-1)
	}
	return out
}

// RunParameters runs the sweep. Points come back in the order of Values.
func RunParameters(ctx context.Context, reg *experiment.Registry, sweep ParameterSweep) ([]Point, error) {
	if sweep.Base == nil || sweep.Param == "" || len(sweep.Values) == 0 {
		return nil, fmt.Errorf("%w: parameter sweep needs a base config, a parameter and values", dynamo.ErrConfig)
	}

	points := lo.Map(sweep.Values, func(v float64, _ int) Point { return Point{Value: v} })

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(sweep.Workers))
	for i := range points {
		g.Go(func() error {
			cfg := *sweep.Base
			cfg.Params = lo.Assign(sweep.Base.Params, map[string]float64{sweep.Param: points[i].Value})
			// only the end state is needed
			cfg.Output.DenseSamples = 1

			exp, err := experiment.New(reg, &cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, points[i].Value, err)
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, points[i].Value, err)
			}
			points[i].Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
