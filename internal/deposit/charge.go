package deposit

import (
	"github.com/san-kum/picsim/internal/grid"
)

// Charge deposits w q S / V at the nodes of rho. With atOld the particles
// are first moved back by dt along their velocity, which is the position
// the current deposition starts from.
func (d base) Charge(b *Batch, rho *grid.Field, p Params, atOld bool) {
	d.checkModes("rho", p, rho)
	if b.Len() == 0 {
		return
	}
	order := d.order
	cyl := d.geom == grid.Cylindrical
	stag := rho.Type()
	invvol := invVolume(d.geom, p.CellSize)
	dxi := [3]float64{1 / p.CellSize[0], 1 / p.CellSize[1], 1 / p.CellSize[2]}

	var need [3][2]bool
	for a := 0; a < 3; a++ {
		need[a][stag[a]] = d.geom.Active(a)
	}

	forParticles(b.Len(), func(ip int) {
		gaminv := gammaInv(b.Ux[ip], b.Uy[ip], b.Uz[ip])
		wq := chargeOf(b, p.Q, ip)
		u := [3]float64{b.Ux[ip], b.Uy[ip], b.Uz[ip]}

		var pos [3]float64
		xy0 := complex(1, 0)
		if cyl {
			x, y := b.X[ip], b.Y[ip]
			if atOld {
				x -= p.Dt * u[0] * gaminv
				y -= p.Dt * u[1] * gaminv
			}
			var r float64
			r, xy0 = phase(x, y)
			pos[0] = (r - p.XYZMin[0]) * dxi[0]
			pos[2] = (b.Z[ip] - p.XYZMin[2]) * dxi[2]
			if atOld {
				pos[2] -= p.Dt * dxi[2] * u[2] * gaminv
			}
		} else {
			pos[0], pos[1], pos[2] = newPosition(b, p, ip)
			if atOld {
				for a := 0; a < 3; a++ {
					pos[a] -= p.Dt * dxi[a] * u[a] * gaminv
				}
			}
		}

		var k [3]kernels
		n := [3]int{1, 1, 1}
		for a := 0; a < 3; a++ {
			if !d.geom.Active(a) {
				k[a].s[stag[a]][0] = 1
				k[a].first[stag[a]] = -p.Lo[a]
				continue
			}
			k[a].compute(order, pos[a], need[a])
			n[a] = order + 1
		}

		sx, sy, sz := &k[0].s[stag[0]], &k[1].s[stag[1]], &k[2].s[stag[2]]
		i0 := p.Lo[0] + k[0].first[stag[0]]
		j0 := p.Lo[1] + k[1].first[stag[1]]
		k0 := p.Lo[2] + k[2].first[stag[2]]
		for iz := 0; iz < n[2]; iz++ {
			for iy := 0; iy < n[1]; iy++ {
				for ix := 0; ix < n[0]; ix++ {
					w := sx[ix] * sy[iy] * sz[iz] * wq * invvol
					rho.AtomicAdd(i0+ix, j0+iy, k0+iz, 0, w)
					if cyl {
						addModes(rho, i0+ix, k0+iz, p.NModes, 2*w, xy0)
					}
				}
			}
		}
	})
}
