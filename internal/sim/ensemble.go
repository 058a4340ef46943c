package sim

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulators side by side, for parameter
// sweeps and benchmarks. Field kernels still share the process-wide
// parallel backend.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

func (e *Ensemble) Len() int { return len(e.sims) }

// Run advances every simulator by steps. The first error cancels the
// others; results of the runs that finished are kept.
func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, len(e.sims))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range e.sims {
		g.Go(func() error {
			r, err := s.Run(ctx, steps)
			results[i] = r
			return err
		})
	}
	return results, g.Wait()
}

// RunEach advances simulator i by steps(i). Failures do not cancel the
// other runs; each run's error is reported at its index.
func (e *Ensemble) RunEach(ctx context.Context, steps func(i int) int) ([]*Result, []error) {
	results := make([]*Result, len(e.sims))
	errs := make([]error, len(e.sims))
	var wg sync.WaitGroup
	for i, s := range e.sims {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = s.Run(ctx, steps(i))
		}()
	}
	wg.Wait()
	return results, errs
}
