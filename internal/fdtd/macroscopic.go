package fdtd

import (
	"fmt"
	"strings"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

// Method picks how conduction is folded into the E update.
type Method uint8

const (
	// LaxWendroff centers the conduction term in time.
	LaxWendroff Method = iota
	// BackwardEuler treats it implicitly; unconditionally damping.
	BackwardEuler
)

func (m Method) String() string {
	if m == BackwardEuler {
		return "backward-euler"
	}
	return "lax-wendroff"
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax-wendroff", "laxwendroff", "lw":
		return LaxWendroff, nil
	case "backward-euler", "backwardeuler", "be":
		return BackwardEuler, nil
	}
	return 0, fmt.Errorf("%w: unknown medium method %q", ErrConfig, s)
}

// Medium describes a linear conducting medium. Sigma and Epsilon are
// nodal fields sampled at each E component's position; Mu is uniform.
type Medium struct {
	Sigma   *grid.Field
	Epsilon *grid.Field
	Mu      float64
	Method  Method
}

// NewUniformMedium fills a medium with constant conductivity and relative
// permittivity and permeability.
func NewUniformMedium(l grid.Layout, cells grid.Box, guard int, sigma, epsR, muR float64, method Method) *Medium {
	m := &Medium{
		Sigma:   l.NewRho(cells, guard, 1),
		Epsilon: l.NewRho(cells, guard, 1),
		Mu:      muR * phys.Mu0,
		Method:  method,
	}
	m.Sigma.Fill(sigma)
	m.Epsilon.Fill(epsR * phys.Epsilon0)
	return m
}

// CheckMedium verifies that a medium can be used with the solver.
func CheckMedium(s *Solver, m *Medium) error {
	if s.cart == nil {
		return fmt.Errorf("%w: macroscopic media in %v", ErrUnsupported, s.cfg.Geometry)
	}
	if m == nil || m.Sigma == nil || m.Epsilon == nil {
		return fmt.Errorf("%w: medium needs sigma and epsilon", ErrConfig)
	}
	if m.Mu <= 0 {
		return fmt.Errorf("%w: permeability must be positive, got %g", ErrConfig, m.Mu)
	}
	if err := grid.CheckScalar("sigma", m.Sigma, s.layout.Rho); err != nil {
		return err
	}
	if err := grid.CheckScalar("epsilon", m.Epsilon, s.layout.Rho); err != nil {
		return err
	}
	for _, v := range m.Epsilon.Data() {
		if v <= 0 {
			return fmt.Errorf("%w: permittivity must be positive, got %g", ErrConfig, v)
		}
	}
	for _, v := range m.Sigma.Data() {
		if v < 0 {
			return fmt.Errorf("%w: conductivity must be non-negative, got %g", ErrConfig, v)
		}
	}
	return nil
}

// coefficients returns alpha and beta of E = alpha E + beta (curl H - J)
// at a point of a component with staggering stag.
func (m *Medium) coefficients(stag grid.Staggering, i, j, k int, dt float64) (alpha, beta float64) {
	sigma := sample(m.Sigma, stag, i, j, k)
	eps := sample(m.Epsilon, stag, i, j, k)
	switch m.Method {
	case BackwardEuler:
		fac := sigma * dt / eps
		return 1 / (1 + fac), dt / (eps + sigma*dt)
	default:
		fac := 0.5 * sigma * dt / eps
		return (1 - fac) / (1 + fac), dt / (eps * (1 + fac))
	}
}

// sample averages nodal f onto a point of staggering stag: every axis
// where stag is cell-centered and f is nodal averages two neighbors.
func sample(f *grid.Field, stag grid.Staggering, i, j, k int) float64 {
	var hi [3]int
	n := 1
	for a := 0; a < 3; a++ {
		if stag[a] == grid.Cell && f.Type()[a] == grid.Node {
			hi[a] = 1
			n *= 2
		}
	}
	s := 0.0
	for dk := 0; dk <= hi[2]; dk++ {
		for dj := 0; dj <= hi[1]; dj++ {
			for di := 0; di <= hi[0]; di++ {
				s += f.At(i+di, j+dj, k+dk, 0)
			}
		}
	}
	return s / float64(n)
}

// MacroscopicEvolveE advances E inside a conducting medium with the
// sigma method. With sigma = 0, eps = eps0 and mu = mu0 it reduces to
// EvolveE without F.
func (s *Solver) MacroscopicEvolveE(e, b, j grid.Vector, m *Medium, dt float64) {
	k := s.cartesian("MacroscopicEvolveE")
	s.mustMatch("E", e, s.layout.E)
	s.mustMatch("B", b, s.layout.B)
	s.mustMatch("J", j, s.layout.J)
	k.macroscopicE(e, b, j, m, dt)
}
