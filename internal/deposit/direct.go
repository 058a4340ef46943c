package deposit

import (
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/shape"
)

type direct struct{ base }

func (direct) Strategy() Strategy { return Direct }

func (d direct) Deposit(b *Batch, j grid.Vector, p Params) {
	d.checkModes("J", p, j[0], j[1], j[2])
	if b.Len() == 0 {
		return
	}
	if d.geom == grid.Cartesian3D {
		d.deposit3D(b, j, p)
		return
	}
	d.deposit2D(b, j, p)
}

// kernels holds the node and cell shape factors of one axis, indexed by
// grid.IndexType, and the leftmost index each one covers.
type kernels struct {
	s     [2][shape.MaxOrder + 1]float64
	first [2]int
}

func (k *kernels) compute(order int, x float64, need [2]bool) {
	if need[grid.Node] {
		k.first[grid.Node] = shape.Compute(order, k.s[grid.Node][:], x)
	}
	if need[grid.Cell] {
		k.first[grid.Cell] = shape.Compute(order, k.s[grid.Cell][:], x-0.5)
	}
}

// needed reports which centerings each axis uses across the components.
func needed(stag [3]grid.Staggering) [3][2]bool {
	var need [3][2]bool
	for _, s := range stag {
		for a := 0; a < 3; a++ {
			need[a][s[a]] = true
		}
	}
	return need
}

func (d direct) deposit3D(b *Batch, j grid.Vector, p Params) {
	order := d.order
	inv := [3]float64{1 / p.CellSize[0], 1 / p.CellSize[1], 1 / p.CellSize[2]}
	invvol := invVolume(d.geom, p.CellSize)
	stag := j.Types()
	need := needed(stag)

	forParticles(b.Len(), func(ip int) {
		gaminv := gammaInv(b.Ux[ip], b.Uy[ip], b.Uz[ip])
		wq := chargeOf(b, p.Q, ip)
		v := [3]float64{b.Ux[ip] * gaminv, b.Uy[ip] * gaminv, b.Uz[ip] * gaminv}
		pos := [3]float64{b.X[ip], b.Y[ip], b.Z[ip]}

		var k [3]kernels
		for a := 0; a < 3; a++ {
			mid := (pos[a]-p.XYZMin[a])*inv[a] - 0.5*p.Dt*inv[a]*v[a]
			k[a].compute(order, mid, need[a])
		}

		for c := 0; c < 3; c++ {
			t := stag[c]
			sx, sy, sz := &k[0].s[t[0]], &k[1].s[t[1]], &k[2].s[t[2]]
			i0 := p.Lo[0] + k[0].first[t[0]]
			j0 := p.Lo[1] + k[1].first[t[1]]
			k0 := p.Lo[2] + k[2].first[t[2]]
			wqv := wq * invvol * v[c]
			for iz := 0; iz <= order; iz++ {
				for iy := 0; iy <= order; iy++ {
					for ix := 0; ix <= order; ix++ {
						j[c].AtomicAdd(i0+ix, j0+iy, k0+iz, 0, sx[ix]*sy[iy]*sz[iz]*wqv)
					}
				}
			}
		}
	})
}

// deposit2D covers both 2-D geometries. In cylindrical geometry the
// velocity is rotated into (r, theta) at the mid-step position and every
// azimuthal mode m receives 2 S w q v e^{i m theta}.
func (d direct) deposit2D(b *Batch, j grid.Vector, p Params) {
	order := d.order
	cyl := d.geom == grid.Cylindrical
	dxi, dzi := 1/p.CellSize[0], 1/p.CellSize[2]
	invvol := invVolume(d.geom, p.CellSize)
	dts2dx, dts2dz := 0.5*p.Dt*dxi, 0.5*p.Dt*dzi
	stag := j.Types()
	need := needed(stag)

	forParticles(b.Len(), func(ip int) {
		gaminv := gammaInv(b.Ux[ip], b.Uy[ip], b.Uz[ip])
		wq := chargeOf(b, p.Q, ip)
		vx, vy, vz := b.Ux[ip]*gaminv, b.Uy[ip]*gaminv, b.Uz[ip]*gaminv

		var wqv [3]float64
		var xmid float64
		xy0 := complex(1, 0)
		if cyl {
			xpmid := b.X[ip] - 0.5*p.Dt*vx
			ypmid := b.Y[ip] - 0.5*p.Dt*vy
			var rpmid float64
			rpmid, xy0 = phase(xpmid, ypmid)
			cos, sin := real(xy0), imag(xy0)
			wqv[0] = wq * invvol * (vx*cos + vy*sin)
			wqv[1] = wq * invvol * (-vx*sin + vy*cos)
			xmid = (rpmid - p.XYZMin[0]) * dxi
		} else {
			wqv[0] = wq * invvol * vx
			wqv[1] = wq * invvol * vy
			xmid = (b.X[ip]-p.XYZMin[0])*dxi - dts2dx*vx
		}
		wqv[2] = wq * invvol * vz
		zmid := (b.Z[ip]-p.XYZMin[2])*dzi - dts2dz*vz

		var kx, kz kernels
		kx.compute(order, xmid, need[0])
		kz.compute(order, zmid, need[2])

		for c := 0; c < 3; c++ {
			t := stag[c]
			sx, sz := &kx.s[t[0]], &kz.s[t[2]]
			i0 := p.Lo[0] + kx.first[t[0]]
			k0 := p.Lo[2] + kz.first[t[2]]
			for iz := 0; iz <= order; iz++ {
				for ix := 0; ix <= order; ix++ {
					w := sx[ix] * sz[iz] * wqv[c]
					j[c].AtomicAdd(i0+ix, 0, k0+iz, 0, w)
					if cyl {
						addModes(j[c], i0+ix, k0+iz, p.NModes, 2*w, xy0)
					}
				}
			}
		}
	})
}

// invVolume returns the reciprocal cell volume. 2-D quantities are per
// unit length along the degenerate axis. Cylindrical kernels deposit per
// r-z cell area; ScaleCurrent and ScaleCharge finish the job.
func invVolume(g grid.Geometry, cell [3]float64) float64 {
	if g.Is2D() {
		return 1 / (cell[0] * cell[2])
	}
	return 1 / (cell[0] * cell[1] * cell[2])
}
