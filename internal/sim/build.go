package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/fdtd"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/pml"
)

// guardFor is the guard width deposition needs at a given shape order:
// the Esirkepov window reaches order/2+2 points past the particle cell.
func guardFor(order int) int { return order + 3 }

// Build constructs a simulator from a validated configuration.
func Build(cfg *config.Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geom, _ := cfg.GeometryKind()
	alg, _ := fdtd.ParseAlgorithm(cfg.Algorithm)
	strategy, _ := deposit.ParseStrategy(cfg.Deposition)

	n := cfg.Cells
	cellSize := cfg.CellSize
	if geom.Is2D() {
		n[1] = 1
		if cellSize[1] <= 0 {
			cellSize[1] = 1
		}
	}
	cells := grid.CellBox(n)
	guard := guardFor(cfg.Order)
	nmodes := 1
	if geom == grid.Cylindrical {
		nmodes = cfg.Modes
	}
	ncomp := grid.ModeComponents(nmodes)
	dt := cfg.TimeStep()

	solver, err := fdtd.New(fdtd.Config{
		Algorithm: alg,
		Geometry:  geom,
		CellSize:  cellSize,
		NModes:    nmodes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	dep, err := deposit.New(strategy, geom, cfg.Order)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}

	l := solver.Layout()
	s := &Simulator{
		cells:     cells,
		guard:     guard,
		dt:        dt,
		solver:    solver,
		dep:       dep,
		diagEvery: cfg.DiagEvery,
		params: deposit.Params{
			Dt:       dt,
			CellSize: cellSize,
			NModes:   nmodes,
		},
	}
	for a := 0; a < 3; a++ {
		s.extent[a] = float64(n[a]) * cellSize[a]
	}
	s.state = State{
		Dt:       dt,
		Geometry: geom,
		CellSize: cellSize,
		E:        l.NewE(cells, guard, ncomp),
		B:        l.NewB(cells, guard, ncomp),
		J:        l.NewJ(cells, guard, ncomp),
		Rho:      l.NewRho(cells, guard, ncomp),
		Solver:   solver,
	}
	if cfg.DivClean {
		s.state.F = l.NewF(cells, guard, ncomp)
	}

	if m := cfg.Medium; m != nil {
		method, _ := fdtd.ParseMethod(m.Method)
		s.medium = fdtd.NewUniformMedium(l, cells, guard, m.Sigma, m.EpsR, m.MuR, method)
		if err := fdtd.CheckMedium(solver, s.medium); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
	}

	if p := cfg.Pulse; p != nil {
		seedPulse(s.state.E[1], geom, cellSize, p)
	}

	if p := cfg.PML; p != nil {
		region, err := pml.New(pml.Config{
			Geometry:  geom,
			Domain:    cells,
			Thickness: p.Thickness,
			CellSize:  cellSize,
			Dt:        dt,
			Strength:  p.Strength,
			Order:     p.Order,
			Guard:     guard,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
		s.region = region
		s.split = region.NewSplitFields(cfg.DivClean)
		s.split.Load(s.state.E, s.state.B, s.state.F)
	}

	for _, sc := range cfg.Species {
		s.state.Species = append(s.state.Species, s.sample(sc))
	}
	return s, nil
}

// sample draws a Gaussian population and keeps the particles that start
// inside the domain.
func (s *Simulator) sample(sc config.SpeciesConfig) *Species {
	sp := &Species{Name: sc.Name, Charge: sc.Charge, Mass: sc.Mass}
	rng := rand.New(rand.NewPCG(sc.Seed, sc.Seed^0x9e3779b97f4a7c15))
	geom := s.state.Geometry
	for i := 0; i < sc.Count; i++ {
		var pos [3]float64
		for a := 0; a < 3; a++ {
			pos[a] = sc.Center[a] + sc.Spread[a]*rng.NormFloat64()
		}
		if geom == grid.CartesianXZ {
			pos[1] = sc.Center[1]
		}
		if !s.inside(pos[0], pos[1], pos[2]) {
			continue
		}
		sp.Batch.Append(pos[0], pos[1], pos[2],
			sc.Momentum[0]*phys.C, sc.Momentum[1]*phys.C, sc.Momentum[2]*phys.C, sc.Weight)
	}
	if sc.IonLevel != 0 {
		sp.Batch.IonLevel = make([]int32, sp.Batch.Len())
		for i := range sp.Batch.IonLevel {
			sp.Batch.IonLevel[i] = sc.IonLevel
		}
	}
	return sp
}

// seedPulse fills the transverse E component (Ey, or Etheta mode 0 in rz)
// with a Gaussian in x and z of the configured amplitude and width,
// centered in physical coordinates. The field does not vary along y or
// theta, so the seeded E has no divergence.
func seedPulse(f *grid.Field, geom grid.Geometry, cellSize [3]float64, p *config.PulseConfig) {
	if p.Width <= 0 {
		return
	}
	stag := f.Type()
	g := f.Grown()
	inv := 1 / (p.Width * p.Width)
	coord := func(a, i int) float64 {
		x := float64(i)
		if stag[a] == grid.Cell {
			x += 0.5
		}
		return x * cellSize[a]
	}
	for k := g.Lo[2]; k <= g.Hi[2]; k++ {
		for j := g.Lo[1]; j <= g.Hi[1]; j++ {
			for i := g.Lo[0]; i <= g.Hi[0]; i++ {
				x := coord(0, i)
				if geom == grid.Cylindrical && x <= 0 {
					continue
				}
				dx, dz := x-p.Center[0], coord(2, k)-p.Center[2]
				f.Set(i, j, k, 0, p.Amplitude*math.Exp(-(dx*dx+dz*dz)*inv))
			}
		}
	}
}
