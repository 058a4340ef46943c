package deposit

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
)

// ContinuityResidual returns max |rho_new - rho_old + dt div J| over the
// nodes whose stencil lies inside the fields. Cylindrical fields must
// already be scaled to densities; there every mode is checked with the
// cylindrical divergence, starting at the axis.
func ContinuityResidual(g grid.Geometry, j grid.Vector, rhoOld, rhoNew *grid.Field, p Params) float64 {
	rg := rhoNew.Grown()
	jlo, jhi := 0, 0
	if !g.Is2D() {
		jlo, jhi = rg.Lo[1]+1, rg.Hi[1]-1
	}
	ncomp := 1
	if g == grid.Cylindrical {
		ncomp = grid.ModeComponents(p.NModes)
	}
	dr, dz := p.CellSize[0], p.CellSize[2]

	worst := 0.0
	for k := rg.Lo[2] + 1; k < rg.Hi[2]; k++ {
		for jj := jlo; jj <= jhi; jj++ {
			for i := rg.Lo[0] + 1; i < rg.Hi[0]; i++ {
				r := p.XYZMin[0] + float64(i-p.Lo[0])*dr
				if g == grid.Cylindrical && r < 0 {
					continue
				}
				for n := 0; n < ncomp; n++ {
					var div float64
					switch {
					case g != grid.Cylindrical:
						div = (j[0].At(i, jj, k, 0)-j[0].At(i-1, jj, k, 0))/dr +
							(j[2].At(i, jj, k, 0)-j[2].At(i, jj, k-1, 0))/dz
						if !g.Is2D() {
							div += (j[1].At(i, jj, k, 0) - j[1].At(i, jj-1, k, 0)) / p.CellSize[1]
						}
					case r == 0:
						if n > 0 {
							continue
						}
						div = 4*j[0].At(i, 0, k, 0)/dr + (j[2].At(i, 0, k, 0)-j[2].At(i, 0, k-1, 0))/dz
					default:
						div = ((r+0.5*dr)*j[0].At(i, 0, k, n)-(r-0.5*dr)*j[0].At(i-1, 0, k, n))/(r*dr) +
							(j[2].At(i, 0, k, n)-j[2].At(i, 0, k-1, n))/dz
						if fm := float64((n + 1) / 2); n%2 == 1 {
							div += fm * j[1].At(i, 0, k, n+1) / r
						} else if n > 0 {
							div -= fm * j[1].At(i, 0, k, n-1) / r
						}
					}
					res := rhoNew.At(i, jj, k, n) - rhoOld.At(i, jj, k, n) + p.Dt*div
					worst = math.Max(worst, math.Abs(res))
				}
			}
		}
	}
	return worst
}
