package sim

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/fdtd"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/parallel"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/pml"
)

// Simulator advances fields and particles with a leapfrog loop:
// move particles, deposit current (and charge), EvolveE, EvolveB and,
// with divergence cleaning, EvolveF. Particles move ballistically at
// constant momentum and are absorbed when they leave the domain.
type Simulator struct {
	cells     grid.Box
	guard     int
	extent    [3]float64
	dt        float64
	params    deposit.Params
	solver    *fdtd.Solver
	dep       deposit.Depositor
	region    *pml.Region
	split     *pml.Split
	medium    *fdtd.Medium
	diagEvery int

	state     State
	absorbed  int
	metrics   []Metric
	observers []Observer
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) State() *State                { return &s.state }
func (s *Simulator) Dt() float64                  { return s.dt }
func (s *Simulator) Extent() [3]float64           { return s.extent }
func (s *Simulator) Depositor() deposit.Depositor { return s.dep }
func (s *Simulator) Params() deposit.Params       { return s.params }
func (s *Simulator) Region() *pml.Region          { return s.region }
func (s *Simulator) Metrics() []Metric            { return s.metrics }

// Absorbed is the number of particles removed at the domain boundary.
func (s *Simulator) Absorbed() int { return s.absorbed }

func (s *Simulator) NumParticles() int {
	n := 0
	for _, sp := range s.state.Species {
		n += sp.Batch.Len()
	}
	return n
}

// Step advances the system by one time step.
func (s *Simulator) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st := &s.state
	for _, sp := range st.Species {
		if err := sp.Batch.Validate(); err != nil {
			return &StepError{Step: st.Step, Time: st.Time, Wrapped: fmt.Errorf("species %s: %w", sp.Name, err)}
		}
	}

	s.push()
	if err := s.deposit(ctx); err != nil {
		return &StepError{Step: st.Step, Time: st.Time, Wrapped: err}
	}

	if s.region != nil {
		s.advancePML()
	} else {
		if s.medium != nil {
			s.solver.MacroscopicEvolveE(st.E, st.B, st.J, s.medium, s.dt)
		} else {
			s.solver.EvolveE(st.E, st.B, st.J, st.F, s.dt)
		}
		s.solver.EvolveB(st.B, st.E, s.dt)
		if st.F != nil {
			s.solver.EvolveF(st.F, st.E, st.Rho, s.dt)
		}
	}

	st.Step++
	st.Time += s.dt

	if !st.E.IsFinite() || !st.B.IsFinite() || (st.F != nil && !st.F.IsFinite()) {
		return &StepError{Step: st.Step, Time: st.Time, Wrapped: ErrInvalidState}
	}
	return nil
}

// push moves every particle by dt at constant momentum and drops those
// that left the domain.
func (s *Simulator) push() {
	for _, sp := range s.state.Species {
		b := &sp.Batch
		parallel.For(b.Len(), 1024, func(start, end int) {
			for ip := start; ip < end; ip++ {
				ux, uy, uz := b.Ux[ip], b.Uy[ip], b.Uz[ip]
				gaminv := gammaInv(ux, uy, uz)
				b.X[ip] += s.dt * ux * gaminv
				b.Y[ip] += s.dt * uy * gaminv
				b.Z[ip] += s.dt * uz * gaminv
			}
		})
		s.absorbed += s.compact(b)
	}
}

func (s *Simulator) compact(b *deposit.Batch) int {
	n := 0
	for ip := 0; ip < b.Len(); ip++ {
		if !s.inside(b.X[ip], b.Y[ip], b.Z[ip]) {
			continue
		}
		if n != ip {
			b.X[n], b.Y[n], b.Z[n] = b.X[ip], b.Y[ip], b.Z[ip]
			b.Ux[n], b.Uy[n], b.Uz[n] = b.Ux[ip], b.Uy[ip], b.Uz[ip]
			b.W[n] = b.W[ip]
			if b.IonLevel != nil {
				b.IonLevel[n] = b.IonLevel[ip]
			}
		}
		n++
	}
	removed := b.Len() - n
	b.X, b.Y, b.Z = b.X[:n], b.Y[:n], b.Z[:n]
	b.Ux, b.Uy, b.Uz = b.Ux[:n], b.Uy[:n], b.Uz[:n]
	b.W = b.W[:n]
	if b.IonLevel != nil {
		b.IonLevel = b.IonLevel[:n]
	}
	return removed
}

// inside reports whether a position lies in the physical domain.
func (s *Simulator) inside(x, y, z float64) bool {
	in := func(v float64, a int) bool { return v >= 0 && v < s.extent[a] }
	switch s.state.Geometry {
	case grid.Cylindrical:
		return math.Sqrt(x*x+y*y) < s.extent[0] && in(z, 2)
	case grid.CartesianXZ:
		return in(x, 0) && in(z, 2)
	}
	return in(x, 0) && in(y, 1) && in(z, 2)
}

// deposit accumulates the current of every species, and the charge when
// it is needed, concurrently. Writes are atomic so species may share J.
func (s *Simulator) deposit(ctx context.Context) error {
	st := &s.state
	st.J.Fill(0)
	st.Rho.Fill(0)

	g, _ := errgroup.WithContext(ctx)
	for _, sp := range st.Species {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("species %s: deposition failed: %v", sp.Name, r)
				}
			}()
			p := s.params
			p.Q = sp.Charge
			s.dep.Deposit(&sp.Batch, st.J, p)
			s.dep.Charge(&sp.Batch, st.Rho, p, false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if st.Geometry == grid.Cylindrical {
		deposit.ScaleCurrent(st.J, s.params)
		deposit.ScaleCharge(st.Rho, s.params)
	}
	return nil
}

func (s *Simulator) hasParticles() bool { return s.NumParticles() > 0 }

// advancePML runs the field update on the split fields, which cover the
// whole domain, and folds the sub-components back into E, B and F.
func (s *Simulator) advancePML() {
	st := &s.state
	sp := s.split
	s.region.DampJ(st.J)
	s.solver.EvolveEPML(sp.E, sp.B, st.J, sp.F, s.region, s.dt, s.hasParticles())
	s.solver.EvolveBPML(sp.B, sp.E, s.dt)
	if sp.F != nil {
		s.solver.EvolveFPML(sp.F, sp.E, s.dt)
		s.region.PushCharge(sp, st.Rho, s.dt)
	}
	s.region.DampFields(sp)
	sp.Totals(st.E, st.B, st.F)
}

// Run advances steps time steps, sampling the metrics every diagEvery
// steps and after the last one.
func (s *Simulator) Run(ctx context.Context, steps int) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("steps must be non-negative, got %d", steps)
	}
	result := newResult(s.metrics)
	for _, m := range s.metrics {
		m.Reset()
	}
	s.record(result)

	for i := 0; i < steps; i++ {
		if err := s.Step(ctx); err != nil {
			s.finish(result)
			return result, err
		}
		result.StepsTaken++
		if i == steps-1 || (s.diagEvery > 0 && s.state.Step%s.diagEvery == 0) {
			s.record(result)
		}
		for _, obs := range s.observers {
			obs.OnStep(&s.state)
		}
	}
	s.finish(result)
	return result, nil
}

// RunWithCallback steps until callback returns false, steps have been
// taken, or ctx is done.
func (s *Simulator) RunWithCallback(ctx context.Context, steps int, callback func(*State) bool) error {
	for i := 0; i < steps; i++ {
		if err := s.Step(ctx); err != nil {
			return err
		}
		if !callback(&s.state) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) record(r *Result) {
	r.Times = append(r.Times, s.state.Time)
	for _, m := range s.metrics {
		m.Observe(&s.state)
		r.History[m.Name()] = append(r.History[m.Name()], m.Value())
	}
}

func (s *Simulator) finish(r *Result) {
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
}

func gammaInv(ux, uy, uz float64) float64 {
	return 1 / math.Sqrt(1+(ux*ux+uy*uy+uz*uz)*phys.InvC2)
}
