package fdtd

import "github.com/san-kum/picsim/internal/grid"

// derivatives is a finite-difference family. Upward derivatives move a
// value from nodes to cell centers, downward ones from cell centers to
// nodes. Every method reads component n of f around (i, j, k).
type derivatives interface {
	UpDx(f *grid.Field, i, j, k, n int) float64
	DnDx(f *grid.Field, i, j, k, n int) float64
	UpDy(f *grid.Field, i, j, k, n int) float64
	DnDy(f *grid.Field, i, j, k, n int) float64
	UpDz(f *grid.Field, i, j, k, n int) float64
	DnDz(f *grid.Field, i, j, k, n int) float64
}

type yee struct {
	ix, iy, iz float64
}

func newYee(s Stencil) yee { return yee{ix: s.X[0], iy: s.Y[0], iz: s.Z[0]} }

func (d yee) UpDx(f *grid.Field, i, j, k, n int) float64 {
	return d.ix * (f.At(i+1, j, k, n) - f.At(i, j, k, n))
}

func (d yee) DnDx(f *grid.Field, i, j, k, n int) float64 {
	return d.ix * (f.At(i, j, k, n) - f.At(i-1, j, k, n))
}

func (d yee) UpDy(f *grid.Field, i, j, k, n int) float64 {
	return d.iy * (f.At(i, j+1, k, n) - f.At(i, j, k, n))
}

func (d yee) DnDy(f *grid.Field, i, j, k, n int) float64 {
	return d.iy * (f.At(i, j, k, n) - f.At(i, j-1, k, n))
}

func (d yee) UpDz(f *grid.Field, i, j, k, n int) float64 {
	return d.iz * (f.At(i, j, k+1, n) - f.At(i, j, k, n))
}

func (d yee) DnDz(f *grid.Field, i, j, k, n int) float64 {
	return d.iz * (f.At(i, j, k, n) - f.At(i, j, k-1, n))
}

// yeeXZ is the Yee family with y derivatives forced to zero.
type yeeXZ struct{ yee }

func (yeeXZ) UpDy(*grid.Field, int, int, int, int) float64 { return 0 }
func (yeeXZ) DnDy(*grid.Field, int, int, int, int) float64 { return 0 }

// nodal uses centered differences; every component lives on the nodes so
// upward and downward derivatives coincide.
type nodal struct {
	hx, hy, hz float64
}

func newNodal(s Stencil) nodal { return nodal{hx: 0.5 * s.X[0], hy: 0.5 * s.Y[0], hz: 0.5 * s.Z[0]} }

func (d nodal) UpDx(f *grid.Field, i, j, k, n int) float64 {
	return d.hx * (f.At(i+1, j, k, n) - f.At(i-1, j, k, n))
}

func (d nodal) DnDx(f *grid.Field, i, j, k, n int) float64 { return d.UpDx(f, i, j, k, n) }

func (d nodal) UpDy(f *grid.Field, i, j, k, n int) float64 {
	return d.hy * (f.At(i, j+1, k, n) - f.At(i, j-1, k, n))
}

func (d nodal) DnDy(f *grid.Field, i, j, k, n int) float64 { return d.UpDy(f, i, j, k, n) }

func (d nodal) UpDz(f *grid.Field, i, j, k, n int) float64 {
	return d.hz * (f.At(i, j, k+1, n) - f.At(i, j, k-1, n))
}

func (d nodal) DnDz(f *grid.Field, i, j, k, n int) float64 { return d.UpDz(f, i, j, k, n) }

type nodalXZ struct{ nodal }

func (nodalXZ) UpDy(*grid.Field, int, int, int, int) float64 { return 0 }
func (nodalXZ) DnDy(*grid.Field, int, int, int, int) float64 { return 0 }

func up[D derivatives](d D, axis int, f *grid.Field, i, j, k, n int) float64 {
	switch axis {
	case 0:
		return d.UpDx(f, i, j, k, n)
	case 1:
		return d.UpDy(f, i, j, k, n)
	}
	return d.UpDz(f, i, j, k, n)
}

func down[D derivatives](d D, axis int, f *grid.Field, i, j, k, n int) float64 {
	switch axis {
	case 0:
		return d.DnDx(f, i, j, k, n)
	case 1:
		return d.DnDy(f, i, j, k, n)
	}
	return d.DnDz(f, i, j, k, n)
}

// upSum and downSum differentiate the sum of the first ncomp components,
// which for split PML fields is the derivative of the total field.
func upSum[D derivatives](d D, axis int, f *grid.Field, i, j, k, ncomp int) float64 {
	s := 0.0
	for n := 0; n < ncomp; n++ {
		s += up(d, axis, f, i, j, k, n)
	}
	return s
}

func downSum[D derivatives](d D, axis int, f *grid.Field, i, j, k, ncomp int) float64 {
	s := 0.0
	for n := 0; n < ncomp; n++ {
		s += down(d, axis, f, i, j, k, n)
	}
	return s
}

// cylindricalYee is the Yee family on an (r, z) mesh. Radii are measured
// from rmin at index 0.
type cylindricalYee struct {
	ir, iz   float64
	dr, rmin float64
	nmodes   int
}

func newCylindricalYee(s Stencil, cellSize [3]float64, rmin float64, nmodes int) cylindricalYee {
	return cylindricalYee{ir: s.X[0], iz: s.Z[0], dr: cellSize[0], rmin: rmin, nmodes: nmodes}
}

func (d cylindricalYee) nodeRadius(i int) float64 { return d.rmin + float64(i)*d.dr }
func (d cylindricalYee) cellRadius(i int) float64 { return d.rmin + (float64(i)+0.5)*d.dr }

func (d cylindricalYee) UpDr(f *grid.Field, i, k, n int) float64 {
	return d.ir * (f.At(i+1, 0, k, n) - f.At(i, 0, k, n))
}

func (d cylindricalYee) DnDr(f *grid.Field, i, k, n int) float64 {
	return d.ir * (f.At(i, 0, k, n) - f.At(i-1, 0, k, n))
}

func (d cylindricalYee) UpDz(f *grid.Field, i, k, n int) float64 {
	return d.iz * (f.At(i, 0, k+1, n) - f.At(i, 0, k, n))
}

func (d cylindricalYee) DnDz(f *grid.Field, i, k, n int) float64 {
	return d.iz * (f.At(i, 0, k, n) - f.At(i, 0, k-1, n))
}

// UpDrrOverR is (1/r) d(rF)/dr at a cell-centered radius r from nodal F.
func (d cylindricalYee) UpDrrOverR(f *grid.Field, r float64, i, k, n int) float64 {
	return ((r+0.5*d.dr)*f.At(i+1, 0, k, n) - (r-0.5*d.dr)*f.At(i, 0, k, n)) / (r * d.dr)
}

// DnDrrOverR is (1/r) d(rF)/dr at a nodal radius r from cell-centered F.
func (d cylindricalYee) DnDrrOverR(f *grid.Field, r float64, i, k, n int) float64 {
	return ((r+0.5*d.dr)*f.At(i, 0, k, n) - (r-0.5*d.dr)*f.At(i-1, 0, k, n)) / (r * d.dr)
}
