package pml

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

// Profile is the damping of one axis for one staggering, indexed by grid
// index minus Lo. Values depend only on the position in the layer.
type Profile struct {
	Lo int
	// Sigma is the conductivity; zero inside the inner box.
	Sigma []float64
	// SigmaFac is exp(-sigma dt), applied to split fields every step.
	SigmaFac []float64
	// CumFac is exp(-integral of sigma over x / c), applied to currents.
	CumFac []float64
}

func (p *Profile) SigmaAt(i int) float64 { return p.Sigma[i-p.Lo] }
func (p *Profile) DampAt(i int) float64  { return p.SigmaFac[i-p.Lo] }
func (p *Profile) CumAt(i int) float64   { return p.CumFac[i-p.Lo] }

func (p *Profile) Len() int { return len(p.Sigma) }

// flatProfile is the profile of an axis without a layer.
func flatProfile() Profile {
	return Profile{Sigma: []float64{0}, SigmaFac: []float64{1}, CumFac: []float64{1}}
}

// newProfile builds the profile of one active axis. lo and hi are the
// first and last index covered; offset 0.5 selects cell centers. The layer
// occupies thickness cells inside each end of the domain [dlo, dhi+1].
func newProfile(lo, hi int, offset float64, dlo, dhi, thickness int, dx, dt, strength float64, order int) Profile {
	n := hi - lo + 1
	p := Profile{
		Lo:       lo,
		Sigma:    make([]float64, n),
		SigmaFac: make([]float64, n),
		CumFac:   make([]float64, n),
	}

	delta := float64(thickness)
	innerLo := float64(dlo + thickness)
	innerHi := float64(dhi + 1 - thickness)
	fac := strength * phys.C / dx
	pw := float64(order)

	for idx := 0; idx < n; idx++ {
		x := float64(lo+idx) + offset
		o := math.Max(0, math.Max(innerLo-x, x-innerHi))

		sigma := fac * math.Pow(o/delta, pw)
		cum := fac * math.Pow(o, pw+1) / ((pw + 1) * math.Pow(delta, pw))

		p.Sigma[idx] = sigma
		p.SigmaFac[idx] = math.Exp(-sigma * dt)
		p.CumFac[idx] = math.Exp(-cum * dx / phys.C)
	}
	return p
}

func profileOffset(t grid.IndexType) float64 {
	if t == grid.Cell {
		return 0.5
	}
	return 0
}
