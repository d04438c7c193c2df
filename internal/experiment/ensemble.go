package experiment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs the same experiment under consecutive seeds. Each sort is
// single-threaded; only independent runs execute concurrently.
type Ensemble struct {
	base      Config
	registry  *Registry
	numRuns   int
	seedStart int64
	workers   int
}

func NewEnsemble(base Config, registry *Registry, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		base:      base,
		registry:  registry,
		numRuns:   numRuns,
		seedStart: seedStart,
		workers:   runtime.GOMAXPROCS(0),
	}
}

func (e *Ensemble) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run returns results indexed by run; the first error cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfg := e.base
			cfg.Seed = e.seedStart + int64(i)

			exp := New(cfg)
			if err := exp.Setup(e.registry); err != nil {
				return err
			}

			res, err := exp.Run(ctx)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
