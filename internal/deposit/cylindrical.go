package deposit

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
)

// ScaleCurrent turns the cylindrical current left by Deposit, which is per
// unit r-z area, into a density by dividing every node or cell by 2 pi r.
// When the grid starts on the axis the deposits at negative radii are
// first folded onto their mirror points.
func ScaleCurrent(j grid.Vector, p Params) {
	scaleRadial(j[0], p, true)
	scaleRadial(j[1], p, true)
	scaleRadial(j[2], p, false)
}

// ScaleCharge is ScaleCurrent for the charge density.
func ScaleCharge(rho *grid.Field, p Params) {
	scaleRadial(rho, p, false)
}

// scaleRadial divides f by the volume of the annulus swept by each radial
// point. On the axis a node owns the disc of radius dr/2, so mode 0 of a
// scalar or axial quantity is divided by pi dr/4 and everything else there
// is zero.
func scaleRadial(f *grid.Field, p Params, transverse bool) {
	dr := p.CellSize[0]
	cell := f.Type()[0] == grid.Cell
	offset := 0.0
	if cell {
		offset = 0.5
	}
	if p.XYZMin[0] == 0 {
		foldAxis(f, p.Lo[0], cell, transverse)
	}
	ncomp := f.NComp()
	grid.ParallelFor(f.Grown(), func(i, j, k int) {
		r := p.XYZMin[0] + (float64(i-p.Lo[0])+offset)*dr
		switch {
		case r > 0:
			inv := 1 / (2 * math.Pi * r)
			for n := 0; n < ncomp; n++ {
				f.Set(i, j, k, n, f.At(i, j, k, n)*inv)
			}
		case r == 0:
			for n := 0; n < ncomp; n++ {
				if n == 0 && !transverse {
					f.Set(i, j, k, n, f.At(i, j, k, n)/(0.25*math.Pi*dr))
				} else {
					f.Set(i, j, k, n, 0)
				}
			}
		default:
			for n := 0; n < ncomp; n++ {
				f.Set(i, j, k, n, 0)
			}
		}
	})
}

// foldAxis adds what was deposited below the axis onto the mirror points
// and clears it. Mode m of a scalar picks up (-1)^m; radial and azimuthal
// components flip once more.
func foldAxis(f *grid.Field, axis int, cell, transverse bool) {
	g := f.Grown()
	ghosts := g
	ghosts.Hi[0] = axis - 1
	ncomp := f.NComp()
	grid.ParallelFor(ghosts, func(i, j, k int) {
		t := 2*axis - i
		if cell {
			t--
		}
		if t > g.Hi[0] {
			return
		}
		for n := 0; n < ncomp; n++ {
			sign := 1.0
			if (n+1)/2%2 == 1 {
				sign = -1
			}
			if transverse {
				sign = -sign
			}
			f.Add(t, j, k, n, sign*f.At(i, j, k, n))
			f.Set(i, j, k, n, 0)
		}
	})
}
