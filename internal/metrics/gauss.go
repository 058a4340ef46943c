package metrics

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/sim"
)

// GaussResidual reports max |eps0 div E - rho| over the valid nodes of
// mode 0. It stays constant in time when the deposited current is charge
// conserving.
type GaussResidual struct {
	name     string
	residual float64
	div      *grid.Field
}

func NewGaussResidual() *GaussResidual {
	return &GaussResidual{name: "gauss_residual"}
}

func (g *GaussResidual) Name() string { return g.name }

func (g *GaussResidual) Observe(st *sim.State) {
	if g.div == nil || g.div.Grown() != st.Rho.Grown() || g.div.NComp() != st.Rho.NComp() {
		g.div = st.Rho.Copy()
	}
	st.Solver.ComputeDivE(st.E, g.div)

	worst := 0.0
	v := g.div.Valid()
	for k := v.Lo[2]; k <= v.Hi[2]; k++ {
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				r := phys.Epsilon0*g.div.At(i, j, k, 0) - st.Rho.At(i, j, k, 0)
				worst = math.Max(worst, math.Abs(r))
			}
		}
	}
	g.residual = worst
}

func (g *GaussResidual) Value() float64 { return g.residual }

func (g *GaussResidual) Reset() { g.residual = 0 }

// CurrentSum reports the sum of one current component over the valid
// box, mode 0, times the cell volume [A m].
type CurrentSum struct {
	name string
	axis int
	sum  float64
}

func NewCurrentSum(axis int) *CurrentSum {
	return &CurrentSum{name: "current_" + "xyz"[axis:axis+1], axis: axis}
}

func (c *CurrentSum) Name() string { return c.name }

func (c *CurrentSum) Observe(st *sim.State) {
	c.sum = st.J[c.axis].SumValid(0) * cellVolume(st)
}

func (c *CurrentSum) Value() float64 { return c.sum }

func (c *CurrentSum) Reset() { c.sum = 0 }

// Default returns the metric set the CLI records.
func Default() []sim.Metric {
	return []sim.Metric{
		NewFieldEnergy(),
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMaxField(),
		NewGaussResidual(),
		NewCurrentSum(2),
		NewParticleCount(),
		NewStability(1e15),
	}
}
