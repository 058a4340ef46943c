package deposit

import (
	"fmt"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/shape"
)

const (
	oneThird = 1.0 / 3.0
	oneSixth = 1.0 / 6.0
)

// window holds the shape factors of one axis at the old and new positions
// over order+3 points starting at index first-1, so that both kernels share
// the same index range even when the particle crossed a cell boundary.
type window struct {
	sNew, sOld [shape.MaxOrder + 3]float64
	first      int
	lo, hi     int // trims the entries that are zero in both kernels
}

func (w *window) compute(order int, xNew, xOld float64) {
	w.first = shape.Compute(order, w.sNew[1:], xNew)
	old := shape.ComputeShifted(order, w.sOld[:order+3], xOld, w.first)
	w.lo, w.hi = 1, 1
	if old < w.first {
		w.lo = 0
	}
	if old > w.first {
		w.hi = 0
	}
}

type esirkepov struct{ base }

func (esirkepov) Strategy() Strategy { return Esirkepov }

func (e esirkepov) Deposit(b *Batch, j grid.Vector, p Params) {
	if err := grid.CheckVector("J", j, grid.YeeLayout(e.geom).J); err != nil {
		panic(fmt.Errorf("deposit: esirkepov needs a Yee current: %w", err))
	}
	e.checkModes("J", p, j[0], j[1], j[2])
	if b.Len() == 0 {
		return
	}
	if e.geom == grid.Cartesian3D {
		e.deposit3D(b, j, p)
		return
	}
	e.deposit2D(b, j, p)
}

func (e esirkepov) deposit3D(b *Batch, j grid.Vector, p Params) {
	order := e.order
	dx, dy, dz := p.CellSize[0], p.CellSize[1], p.CellSize[2]
	dxi, dyi, dzi := 1/dx, 1/dy, 1/dz
	invdtdx := 1 / (p.Dt * dy * dz)
	invdtdy := 1 / (p.Dt * dx * dz)
	invdtdz := 1 / (p.Dt * dx * dy)
	jx, jy, jz := j[0], j[1], j[2]

	forParticles(b.Len(), func(ip int) {
		gaminv := gammaInv(b.Ux[ip], b.Uy[ip], b.Uz[ip])
		wq := chargeOf(b, p.Q, ip)
		wqx, wqy, wqz := wq*invdtdx, wq*invdtdy, wq*invdtdz

		var wx, wy, wz window
		xNew, yNew, zNew := newPosition(b, p, ip)
		wx.compute(order, xNew, xNew-p.Dt*dxi*b.Ux[ip]*gaminv)
		wy.compute(order, yNew, yNew-p.Dt*dyi*b.Uy[ip]*gaminv)
		wz.compute(order, zNew, zNew-p.Dt*dzi*b.Uz[ip]*gaminv)

		i0 := p.Lo[0] + wx.first - 1
		j0 := p.Lo[1] + wy.first - 1
		k0 := p.Lo[2] + wz.first - 1
		sx, sy, sz := &wx, &wy, &wz

		for k := sz.lo; k <= order+2-sz.hi; k++ {
			for jj := sy.lo; jj <= order+2-sy.hi; jj++ {
				sdxi := 0.0
				for i := sx.lo; i <= order+1-sx.hi; i++ {
					sdxi += wqx * (sx.sOld[i] - sx.sNew[i]) *
						(oneThird*(sy.sNew[jj]*sz.sNew[k]+sy.sOld[jj]*sz.sOld[k]) +
							oneSixth*(sy.sNew[jj]*sz.sOld[k]+sy.sOld[jj]*sz.sNew[k]))
					jx.AtomicAdd(i0+i, j0+jj, k0+k, 0, sdxi)
				}
			}
		}
		for k := sz.lo; k <= order+2-sz.hi; k++ {
			for i := sx.lo; i <= order+2-sx.hi; i++ {
				sdyj := 0.0
				for jj := sy.lo; jj <= order+1-sy.hi; jj++ {
					sdyj += wqy * (sy.sOld[jj] - sy.sNew[jj]) *
						(oneThird*(sx.sNew[i]*sz.sNew[k]+sx.sOld[i]*sz.sOld[k]) +
							oneSixth*(sx.sNew[i]*sz.sOld[k]+sx.sOld[i]*sz.sNew[k]))
					jy.AtomicAdd(i0+i, j0+jj, k0+k, 0, sdyj)
				}
			}
		}
		for jj := sy.lo; jj <= order+2-sy.hi; jj++ {
			for i := sx.lo; i <= order+2-sx.hi; i++ {
				sdzk := 0.0
				for k := sz.lo; k <= order+1-sz.hi; k++ {
					sdzk += wqz * (sz.sOld[k] - sz.sNew[k]) *
						(oneThird*(sx.sNew[i]*sy.sNew[jj]+sx.sOld[i]*sy.sOld[jj]) +
							oneSixth*(sx.sNew[i]*sy.sOld[jj]+sx.sOld[i]*sy.sNew[jj]))
					jz.AtomicAdd(i0+i, j0+jj, k0+k, 0, sdzk)
				}
			}
		}
	})
}

// deposit2D covers both 2-D geometries. The out-of-plane component is
// deposited as a mid-step current since nothing moves along the degenerate
// axis. In cylindrical geometry the radial and axial currents of mode m
// pick up 2 e^{i m theta_mid} and the azimuthal modes follow from the
// change of e^{i m theta} over the step.
func (e esirkepov) deposit2D(b *Batch, j grid.Vector, p Params) {
	order := e.order
	cyl := e.geom == grid.Cylindrical
	dx, dz := p.CellSize[0], p.CellSize[2]
	dxi, dzi := 1/dx, 1/dz
	invdtdx := 1 / (p.Dt * dz)
	invdtdz := 1 / (p.Dt * dx)
	invvol := invVolume(e.geom, p.CellSize)
	xmin := p.XYZMin[0]
	jx, jy, jz := j[0], j[1], j[2]

	forParticles(b.Len(), func(ip int) {
		gaminv := gammaInv(b.Ux[ip], b.Uy[ip], b.Uz[ip])
		wq := chargeOf(b, p.Q, ip)
		wqx, wqz := wq*invdtdx, wq*invdtdz

		var xNew, xOld, vy float64
		xyNew0, xyMid0, xyOld0 := complex(1, 0), complex(1, 0), complex(1, 0)
		if cyl {
			vx, vyc := b.Ux[ip]*gaminv, b.Uy[ip]*gaminv
			var rNew, rOld float64
			rNew, xyNew0 = phase(b.X[ip], b.Y[ip])
			_, xyMid0 = phase(b.X[ip]-0.5*p.Dt*vx, b.Y[ip]-0.5*p.Dt*vyc)
			rOld, xyOld0 = phase(b.X[ip]-p.Dt*vx, b.Y[ip]-p.Dt*vyc)
			xNew = (rNew - xmin) * dxi
			xOld = (rOld - xmin) * dxi
			vy = (-b.Ux[ip]*imag(xyMid0) + b.Uy[ip]*real(xyMid0)) * gaminv
		} else {
			xNew = (b.X[ip] - xmin) * dxi
			xOld = xNew - p.Dt*dxi*b.Ux[ip]*gaminv
			vy = b.Uy[ip] * gaminv
		}
		zNew := (b.Z[ip] - p.XYZMin[2]) * dzi
		zOld := zNew - p.Dt*dzi*b.Uz[ip]*gaminv
		wqy := wq * vy * invvol

		var sx, sz window
		sx.compute(order, xNew, xOld)
		sz.compute(order, zNew, zOld)
		i0 := p.Lo[0] + sx.first - 1
		k0 := p.Lo[2] + sz.first - 1

		for k := sz.lo; k <= order+2-sz.hi; k++ {
			sdxi := 0.0
			for i := sx.lo; i <= order+1-sx.hi; i++ {
				sdxi += wqx * (sx.sOld[i] - sx.sNew[i]) * 0.5 * (sz.sNew[k] + sz.sOld[k])
				jx.AtomicAdd(i0+i, 0, k0+k, 0, sdxi)
				if cyl {
					addModes(jx, i0+i, k0+k, p.NModes, 2*sdxi, xyMid0)
				}
			}
		}
		for k := sz.lo; k <= order+2-sz.hi; k++ {
			for i := sx.lo; i <= order+2-sx.hi; i++ {
				sdyj := wqy * (oneThird*(sx.sNew[i]*sz.sNew[k]+sx.sOld[i]*sz.sOld[k]) +
					oneSixth*(sx.sNew[i]*sz.sOld[k]+sx.sOld[i]*sz.sNew[k]))
				jy.AtomicAdd(i0+i, 0, k0+k, 0, sdyj)
				if !cyl {
					continue
				}
				// r/dr at this node, relative to the radius of Lo.
				rOverDr := float64(sx.first-1+i) + xmin*dxi
				xyNew, xyMid, xyOld := xyNew0, xyMid0, xyOld0
				for m := 1; m < p.NModes; m++ {
					scale := 2 * rOverDr * wq * invdtdx / float64(m)
					djt := complex(0, -scale) *
						(complex(sx.sNew[i]*sz.sNew[k], 0)*(xyNew-xyMid) +
							complex(sx.sOld[i]*sz.sOld[k], 0)*(xyMid-xyOld))
					jy.AtomicAdd(i0+i, 0, k0+k, 2*m-1, real(djt))
					jy.AtomicAdd(i0+i, 0, k0+k, 2*m, imag(djt))
					xyNew *= xyNew0
					xyMid *= xyMid0
					xyOld *= xyOld0
				}
			}
		}
		for i := sx.lo; i <= order+2-sx.hi; i++ {
			sdzk := 0.0
			for k := sz.lo; k <= order+1-sz.hi; k++ {
				sdzk += wqz * (sz.sOld[k] - sz.sNew[k]) * 0.5 * (sx.sNew[i] + sx.sOld[i])
				jz.AtomicAdd(i0+i, 0, k0+k, 0, sdzk)
				if cyl {
					addModes(jz, i0+i, k0+k, p.NModes, 2*sdzk, xyMid0)
				}
			}
		}
	})
}

// addModes adds v e^{i m theta} to modes 1..nmodes-1 at (i, 0, k).
func addModes(f *grid.Field, i, k, nmodes int, v float64, xy0 complex128) {
	xy := xy0
	for m := 1; m < nmodes; m++ {
		f.AtomicAdd(i, 0, k, 2*m-1, v*real(xy))
		f.AtomicAdd(i, 0, k, 2*m, v*imag(xy))
		xy *= xy0
	}
}

// newPosition returns the end-of-step position in grid units relative to
// Lo.
func newPosition(b *Batch, p Params, ip int) (x, y, z float64) {
	x = (b.X[ip] - p.XYZMin[0]) * (1 / p.CellSize[0])
	y = (b.Y[ip] - p.XYZMin[1]) * (1 / p.CellSize[1])
	z = (b.Z[ip] - p.XYZMin[2]) * (1 / p.CellSize[2])
	return x, y, z
}
