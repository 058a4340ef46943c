package pml

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

var (
	ErrUnsupported = errors.New("pml: unsupported geometry")
	ErrConfig      = errors.New("pml: invalid configuration")
)

const (
	DefaultStrength = 4.0
	DefaultOrder    = 2
)

type Config struct {
	Geometry grid.Geometry
	// Domain is the cell box the split fields cover. The absorbing layer
	// is the outer Thickness cells of every active axis.
	Domain    grid.Box
	Thickness int
	CellSize  [3]float64
	Dt        float64
	// Strength scales the peak conductivity, in units of c/dx.
	Strength float64
	// Order is the polynomial grading of the conductivity.
	Order int
	Guard int
}

// Region is a split-field absorbing layer. Its profiles are built once
// and never change.
type Region struct {
	cfg    Config
	layout grid.Layout
	inner  grid.Box
	prof   [3][2]Profile
}

func New(cfg Config) (*Region, error) {
	if cfg.Geometry == grid.Cylindrical {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, cfg.Geometry)
	}
	if cfg.Geometry != grid.Cartesian3D && cfg.Geometry != grid.CartesianXZ {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, cfg.Geometry)
	}
	if cfg.Strength == 0 {
		cfg.Strength = DefaultStrength
	}
	if cfg.Order == 0 {
		cfg.Order = DefaultOrder
	}
	if cfg.Strength < 0 || cfg.Order < 0 {
		return nil, fmt.Errorf("%w: strength %g and order %d must be positive", ErrConfig, cfg.Strength, cfg.Order)
	}
	if cfg.Thickness < 1 {
		return nil, fmt.Errorf("%w: thickness %d", ErrConfig, cfg.Thickness)
	}
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) {
		return nil, fmt.Errorf("%w: dt %g", ErrConfig, cfg.Dt)
	}
	if cfg.Guard < 0 {
		return nil, fmt.Errorf("%w: guard %d", ErrConfig, cfg.Guard)
	}

	r := &Region{cfg: cfg, layout: grid.YeeLayout(cfg.Geometry), inner: cfg.Domain}
	for a := 0; a < 3; a++ {
		if !cfg.Geometry.Active(a) {
			r.prof[a][grid.Cell] = flatProfile()
			r.prof[a][grid.Node] = flatProfile()
			continue
		}
		if cfg.CellSize[a] <= 0 {
			return nil, fmt.Errorf("%w: cell size %g along axis %d", ErrConfig, cfg.CellSize[a], a)
		}
		if 2*cfg.Thickness >= cfg.Domain.Size(a) {
			return nil, fmt.Errorf("%w: thickness %d leaves no interior along axis %d (%d cells)",
				ErrConfig, cfg.Thickness, a, cfg.Domain.Size(a))
		}
		r.inner.Lo[a] += cfg.Thickness
		r.inner.Hi[a] -= cfg.Thickness

		lo := cfg.Domain.Lo[a] - cfg.Guard
		hi := cfg.Domain.Hi[a] + 1 + cfg.Guard
		for _, t := range []grid.IndexType{grid.Cell, grid.Node} {
			r.prof[a][t] = newProfile(lo, hi, profileOffset(t), cfg.Domain.Lo[a], cfg.Domain.Hi[a],
				cfg.Thickness, cfg.CellSize[a], cfg.Dt, cfg.Strength, cfg.Order)
		}
	}
	return r, nil
}

func (r *Region) Config() Config      { return r.cfg }
func (r *Region) Layout() grid.Layout { return r.layout }

// Inner is the cell box left undamped.
func (r *Region) Inner() grid.Box { return r.inner }

func (r *Region) Profile(axis int, t grid.IndexType) *Profile { return &r.prof[axis][t] }

// Apportion splits a quantity between two sub-components in proportion to
// their damping a and b. Both weights are exactly 0.5 when a and b are
// zero, and wa+wb is exactly 1.
func Apportion(a, b float64) (wa, wb float64) {
	s := a + b
	if s == 0 {
		return 0.5, 0.5
	}
	if a <= b {
		wa = a / s
		return wa, 1 - wa
	}
	wb = b / s
	return 1 - wb, wb
}

// weights returns the share of component c's current going to its two
// curl-driven sub-components at (i, j, k).
func (r *Region) weights(c int, stag grid.Staggering, i, j, k int) (float64, float64) {
	a, b := (c+1)%3, (c+2)%3
	g := r.cfg.Geometry
	switch {
	case !g.Active(a):
		return 0, 1
	case !g.Active(b):
		return 1, 0
	case g.Is2D():
		return 0.5, 0.5
	}
	idx := [3]int{i, j, k}
	return Apportion(r.prof[a][stag[a]].SigmaAt(idx[a]), r.prof[b][stag[b]].SigmaAt(idx[b]))
}

// PushCurrent subtracts dt/eps0 J from the split E sub-components,
// apportioned by the local damping of their driving axes.
func (r *Region) PushCurrent(e, j grid.Vector, dt float64) {
	coef := dt / phys.Epsilon0
	for c := 0; c < 3; c++ {
		ec, jc := e[c], j[c]
		stag := ec.Type()
		grid.ParallelFor(ec.Valid(), func(i, jj, k int) {
			wa, wb := r.weights(c, stag, i, jj, k)
			v := coef * jc.At(i, jj, k, 0)
			ec.Add(i, jj, k, 0, -wa*v)
			ec.Add(i, jj, k, 1, -wb*v)
		})
	}
}

// PushCharge subtracts dt/eps0 rho from the split F, shared evenly
// between the sub-components of the active axes.
func (r *Region) PushCharge(s *Split, rho *grid.Field, dt float64) {
	if s.F == nil || rho == nil {
		return
	}
	checkPair(rho, s.F)
	var axes []int
	for a := 0; a < 3; a++ {
		if r.cfg.Geometry.Active(a) {
			axes = append(axes, a)
		}
	}
	coef := dt / phys.Epsilon0 / float64(len(axes))
	f := s.F
	grid.ParallelFor(f.Valid(), func(i, j, k int) {
		v := coef * rho.At(i, j, k, 0)
		for _, a := range axes {
			f.Add(i, j, k, a, -v)
		}
	})
}

// DampJ multiplies each current component by the cumulative damping of
// every axis at its own position.
func (r *Region) DampJ(j grid.Vector) {
	for c := 0; c < 3; c++ {
		jc := j[c]
		stag := jc.Type()
		px, py, pz := &r.prof[0][stag[0]], &r.prof[1][stag[1]], &r.prof[2][stag[2]]
		grid.ParallelFor(jc.Valid(), func(i, jj, k int) {
			jc.Set(i, jj, k, 0, jc.At(i, jj, k, 0)*px.CumAt(i)*py.CumAt(jj)*pz.CumAt(k))
		})
	}
}

// DampFields applies one step of exponential damping to every split
// sub-component, using the profile of the axis that drives it.
func (r *Region) DampFields(s *Split) {
	for c := 0; c < 3; c++ {
		a, b := (c+1)%3, (c+2)%3
		r.dampSub(s.E[c], 0, a)
		r.dampSub(s.E[c], 1, b)
		r.dampSub(s.E[c], 2, c)
		r.dampSub(s.B[c], 0, a)
		r.dampSub(s.B[c], 1, b)
	}
	if s.F != nil {
		for a := 0; a < 3; a++ {
			r.dampSub(s.F, a, a)
		}
	}
}

func (r *Region) dampSub(f *grid.Field, n, axis int) {
	if !r.cfg.Geometry.Active(axis) {
		return
	}
	p := &r.prof[axis][f.Type()[axis]]
	grid.ParallelFor(f.Valid(), func(i, j, k int) {
		idx := [3]int{i, j, k}
		f.Set(i, j, k, n, f.At(i, j, k, n)*p.DampAt(idx[axis]))
	})
}
