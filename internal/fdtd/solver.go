package fdtd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/picsim/internal/grid"
)

var (
	ErrConfig      = errors.New("fdtd: invalid solver configuration")
	ErrUnsupported = errors.New("fdtd: operation not supported for this geometry")
)

// Algorithm selects the finite-difference family.
type Algorithm uint8

const (
	Yee Algorithm = iota
	Nodal
)

func (a Algorithm) String() string {
	switch a {
	case Yee:
		return "yee"
	case Nodal:
		return "nodal"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yee", "":
		return Yee, nil
	case "nodal":
		return Nodal, nil
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrConfig, s)
}

// Layout returns the staggering an algorithm expects in a geometry.
func (a Algorithm) Layout(g grid.Geometry) grid.Layout {
	if a == Nodal {
		return grid.NodalLayout(g)
	}
	return grid.YeeLayout(g)
}

type Config struct {
	Algorithm Algorithm
	Geometry  grid.Geometry
	CellSize  [3]float64
	// NModes is the number of azimuthal modes kept in cylindrical geometry.
	NModes int
	// RMin is the radius of index 0 along axis 0 in cylindrical geometry.
	RMin float64
	// Layout, when set, must match the algorithm's own staggering.
	Layout *grid.Layout
}

type kernels interface {
	evolveB(b, e grid.Vector, dt float64)
	evolveE(e, b, j grid.Vector, f *grid.Field, dt float64)
	evolveF(f *grid.Field, e grid.Vector, rho *grid.Field, dt float64)
	divE(e grid.Vector, div *grid.Field)
}

// cartesianKernels are the operations only the Cartesian geometries have.
type cartesianKernels interface {
	kernels
	macroscopicE(e, b, j grid.Vector, m *Medium, dt float64)
	evolveBPML(b, e grid.Vector, dt float64)
	evolveEPML(e, b grid.Vector, f *grid.Field, dt float64)
	evolveFPML(f *grid.Field, e grid.Vector, dt float64)
}

// Solver advances E, B and F on a fixed stencil. It holds no field data
// and never allocates while stepping.
type Solver struct {
	cfg     Config
	layout  grid.Layout
	stencil Stencil
	k       kernels
	cart    cartesianKernels
}

func New(cfg Config) (*Solver, error) {
	switch cfg.Algorithm {
	case Yee, Nodal:
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrConfig, cfg.Algorithm)
	}
	switch cfg.Geometry {
	case grid.Cartesian3D, grid.CartesianXZ, grid.Cylindrical:
	default:
		return nil, fmt.Errorf("%w: %v", ErrConfig, cfg.Geometry)
	}

	st, err := NewStencil(cfg.Geometry, cfg.CellSize)
	if err != nil {
		return nil, err
	}

	layout := cfg.Algorithm.Layout(cfg.Geometry)
	if cfg.Layout != nil && *cfg.Layout != layout {
		return nil, fmt.Errorf("%w: declared layout does not match the %v staggering in %v", grid.ErrLayout, cfg.Algorithm, cfg.Geometry)
	}

	s := &Solver{cfg: cfg, layout: layout, stencil: st}

	switch {
	case cfg.Geometry == grid.Cylindrical:
		if cfg.Algorithm != Yee {
			return nil, fmt.Errorf("%w: %v is not available in cylindrical geometry", ErrConfig, cfg.Algorithm)
		}
		if cfg.NModes < 1 {
			return nil, fmt.Errorf("%w: need at least one azimuthal mode, got %d", ErrConfig, cfg.NModes)
		}
		if cfg.RMin < 0 {
			return nil, fmt.Errorf("%w: negative rmin %g", ErrConfig, cfg.RMin)
		}
		s.k = cylindrical{d: newCylindricalYee(st, cfg.CellSize, cfg.RMin, cfg.NModes)}
	case cfg.Algorithm == Yee && cfg.Geometry == grid.Cartesian3D:
		s.cart = cartesian[yee]{d: newYee(st)}
	case cfg.Algorithm == Yee:
		s.cart = cartesian[yeeXZ]{d: yeeXZ{newYee(st)}}
	case cfg.Geometry == grid.Cartesian3D:
		s.cart = cartesian[nodal]{d: newNodal(st)}
	default:
		s.cart = cartesian[nodalXZ]{d: nodalXZ{newNodal(st)}}
	}
	if s.cart != nil {
		s.k = s.cart
	}
	return s, nil
}

func (s *Solver) Layout() grid.Layout { return s.layout }
func (s *Solver) Stencil() Stencil    { return s.stencil }
func (s *Solver) Config() Config      { return s.cfg }

// EvolveB advances B by dt using the curl of E: B -= dt * curl E.
//
// Call it after EvolveE for the same step; E is read only.
func (s *Solver) EvolveB(b, e grid.Vector, dt float64) {
	s.mustMatch("B", b, s.layout.B)
	s.mustMatch("E", e, s.layout.E)
	s.k.evolveB(b, e, dt)
}

// EvolveE advances E by dt: E += c^2 dt curl B - dt/eps0 J, plus
// c^2 dt grad F when f is not nil.
//
// Every species must have finished depositing into j before the call.
func (s *Solver) EvolveE(e, b, j grid.Vector, f *grid.Field, dt float64) {
	s.mustMatch("E", e, s.layout.E)
	s.mustMatch("B", b, s.layout.B)
	s.mustMatch("J", j, s.layout.J)
	s.mustMatchScalar("F", f, s.layout.F)
	s.k.evolveE(e, b, j, f, dt)
}

// EvolveF advances the divergence-cleaning field:
// F += dt (div E - rho/eps0). rho may be nil.
func (s *Solver) EvolveF(f *grid.Field, e grid.Vector, rho *grid.Field, dt float64) {
	s.mustMatchScalar("F", f, s.layout.F)
	s.mustMatch("E", e, s.layout.E)
	s.mustMatchScalar("rho", rho, s.layout.Rho)
	s.k.evolveF(f, e, rho, dt)
}

// ComputeDivE writes div E at the nodes into div.
func (s *Solver) ComputeDivE(e grid.Vector, div *grid.Field) {
	s.mustMatch("E", e, s.layout.E)
	s.mustMatchScalar("divE", div, s.layout.Rho)
	s.k.divE(e, div)
}

func (s *Solver) cartesian(op string) cartesianKernels {
	if s.cart == nil {
		panic(fmt.Errorf("%w: %s in %v", ErrUnsupported, op, s.cfg.Geometry))
	}
	return s.cart
}

func (s *Solver) mustMatch(name string, v grid.Vector, want [3]grid.Staggering) {
	if err := grid.CheckVector(name, v, want); err != nil {
		panic(err)
	}
	if s.cfg.Geometry != grid.Cylindrical {
		return
	}
	need := grid.ModeComponents(s.cfg.NModes)
	for d := 0; d < 3; d++ {
		if v[d].NComp() < need {
			panic(fmt.Errorf("%w: %s[%d] has %d components, %d modes need %d",
				grid.ErrLayout, name, d, v[d].NComp(), s.cfg.NModes, need))
		}
	}
}

func (s *Solver) mustMatchScalar(name string, f *grid.Field, want grid.Staggering) {
	if err := grid.CheckScalar(name, f, want); err != nil {
		panic(err)
	}
}
