package analysis

import (
	"math"

	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/grid"
)

// ContinuityResidual deposits one batch on a fresh Yee grid of the given
// cells and returns max |rho_new - rho_old + dt div J| relative to
// max |rho_new|. Cylindrical deposits are scaled to densities and every
// mode is checked. Esirkepov deposition gives rounding-level values;
// Direct does not conserve charge.
func ContinuityResidual(b *deposit.Batch, d deposit.Depositor, p deposit.Params, cells grid.Box) float64 {
	g := d.Geometry()
	l := grid.YeeLayout(g)
	guard := d.Order() + 3
	ncomp := grid.ModeComponents(p.NModes)
	j := l.NewJ(cells, guard, ncomp)
	rhoOld := l.NewRho(cells, guard, ncomp)
	rhoNew := l.NewRho(cells, guard, ncomp)

	d.Deposit(b, j, p)
	d.Charge(b, rhoOld, p, true)
	d.Charge(b, rhoNew, p, false)
	if g == grid.Cylindrical {
		deposit.ScaleCurrent(j, p)
		deposit.ScaleCharge(rhoOld, p)
		deposit.ScaleCharge(rhoNew, p)
	}

	worst := deposit.ContinuityResidual(g, j, rhoOld, rhoNew, p)
	scale := 0.0
	for _, v := range rhoNew.Data() {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		return worst
	}
	return worst / scale
}
