package fdtd

import (
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

// cylindrical advances azimuthal modes on an (r, z) mesh. Mode 0 is
// component 0; mode m keeps its cos(m theta) and sin(m theta) amplitudes
// in components 2m-1 and 2m, so d/dtheta maps (re, im) to (m im, -m re).
type cylindrical struct {
	d cylindricalYee
}

func (c cylindrical) evolveB(b, e grid.Vector, dt float64) {
	d := c.d
	br, bt, bz := b[0], b[1], b[2]
	er, et, ez := e[0], e[1], e[2]
	nm := d.nmodes

	grid.ParallelFor(br.Valid(), func(i, _, k int) {
		r := d.nodeRadius(i)
		if r != 0 {
			br.Add(i, 0, k, 0, dt*d.UpDz(et, i, k, 0))
			for m := 1; m < nm; m++ {
				re, im, fm := 2*m-1, 2*m, float64(m)
				br.Add(i, 0, k, re, dt*(d.UpDz(et, i, k, re)-fm*ez.At(i, 0, k, im)/r))
				br.Add(i, 0, k, im, dt*(d.UpDz(et, i, k, im)+fm*ez.At(i, 0, k, re)/r))
			}
			return
		}
		// On axis only the m = 1 part of Br survives; m Ez/r is
		// replaced by its limit, Ez one cell out over dr.
		br.Set(i, 0, k, 0, 0)
		for m := 1; m < nm; m++ {
			re, im := 2*m-1, 2*m
			if m == 1 {
				br.Add(i, 0, k, re, dt*(d.UpDz(et, i, k, re)-ez.At(i+1, 0, k, im)/d.dr))
				br.Add(i, 0, k, im, dt*(d.UpDz(et, i, k, im)+ez.At(i+1, 0, k, re)/d.dr))
			} else {
				br.Set(i, 0, k, re, 0)
				br.Set(i, 0, k, im, 0)
			}
		}
	})

	ncomp := grid.ModeComponents(nm)
	grid.ParallelFor(bt.Valid(), func(i, _, k int) {
		for n := 0; n < ncomp; n++ {
			bt.Add(i, 0, k, n, dt*(d.UpDr(ez, i, k, n)-d.UpDz(er, i, k, n)))
		}
	})

	grid.ParallelFor(bz.Valid(), func(i, _, k int) {
		r := d.cellRadius(i)
		bz.Add(i, 0, k, 0, -dt*d.UpDrrOverR(et, r, i, k, 0))
		for m := 1; m < nm; m++ {
			re, im, fm := 2*m-1, 2*m, float64(m)
			bz.Add(i, 0, k, re, dt*(fm*er.At(i, 0, k, im)/r-d.UpDrrOverR(et, r, i, k, re)))
			bz.Add(i, 0, k, im, dt*(-fm*er.At(i, 0, k, re)/r-d.UpDrrOverR(et, r, i, k, im)))
		}
	})
}

func (c cylindrical) evolveE(e, b, jv grid.Vector, f *grid.Field, dt float64) {
	d := c.d
	er, et, ez := e[0], e[1], e[2]
	br, bt, bz := b[0], b[1], b[2]
	jr, jt, jz := jv[0], jv[1], jv[2]
	nm := d.nmodes
	c2dt := phys.C2 * dt
	mu0c2dt := dt / phys.Epsilon0

	grid.ParallelFor(er.Valid(), func(i, _, k int) {
		r := d.cellRadius(i)
		er.Add(i, 0, k, 0, -c2dt*d.DnDz(bt, i, k, 0)-mu0c2dt*jr.At(i, 0, k, 0))
		for m := 1; m < nm; m++ {
			re, im, fm := 2*m-1, 2*m, float64(m)
			er.Add(i, 0, k, re, c2dt*(fm*bz.At(i, 0, k, im)/r-d.DnDz(bt, i, k, re))-mu0c2dt*jr.At(i, 0, k, re))
			er.Add(i, 0, k, im, c2dt*(-fm*bz.At(i, 0, k, re)/r-d.DnDz(bt, i, k, im))-mu0c2dt*jr.At(i, 0, k, im))
		}
		if f != nil {
			for n := 0; n < 2*nm-1; n++ {
				er.Add(i, 0, k, n, c2dt*d.UpDr(f, i, k, n))
			}
		}
	})

	grid.ParallelFor(et.Valid(), func(i, _, k int) {
		r := d.nodeRadius(i)
		if r != 0 {
			for n := 0; n < 2*nm-1; n++ {
				et.Add(i, 0, k, n, c2dt*(d.DnDz(br, i, k, n)-d.DnDr(bz, i, k, n))-mu0c2dt*jt.At(i, 0, k, n))
			}
			if f != nil {
				for m := 1; m < nm; m++ {
					re, im, fm := 2*m-1, 2*m, float64(m)
					et.Add(i, 0, k, re, c2dt*fm*f.At(i, 0, k, im)/r)
					et.Add(i, 0, k, im, -c2dt*fm*f.At(i, 0, k, re)/r)
				}
			}
			return
		}
		// On axis Etheta has no mode 0 part and its m = 1 part follows
		// from Er as for a uniform transverse field.
		et.Set(i, 0, k, 0, 0)
		for m := 1; m < nm; m++ {
			re, im := 2*m-1, 2*m
			if m == 1 {
				et.Set(i, 0, k, re, er.At(i, 0, k, im))
				et.Set(i, 0, k, im, -er.At(i, 0, k, re))
			} else {
				et.Set(i, 0, k, re, 0)
				et.Set(i, 0, k, im, 0)
			}
		}
	})

	grid.ParallelFor(ez.Valid(), func(i, _, k int) {
		r := d.nodeRadius(i)
		if r != 0 {
			ez.Add(i, 0, k, 0, c2dt*d.DnDrrOverR(bt, r, i, k, 0)-mu0c2dt*jz.At(i, 0, k, 0))
			for m := 1; m < nm; m++ {
				re, im, fm := 2*m-1, 2*m, float64(m)
				ez.Add(i, 0, k, re, c2dt*(-fm*br.At(i, 0, k, im)/r+d.DnDrrOverR(bt, r, i, k, re))-mu0c2dt*jz.At(i, 0, k, re))
				ez.Add(i, 0, k, im, c2dt*(fm*br.At(i, 0, k, re)/r+d.DnDrrOverR(bt, r, i, k, im))-mu0c2dt*jz.At(i, 0, k, im))
			}
		} else {
			ez.Add(i, 0, k, 0, 4*c2dt*bt.At(i, 0, k, 0)/d.dr-mu0c2dt*jz.At(i, 0, k, 0))
			for m := 1; m < nm; m++ {
				ez.Set(i, 0, k, 2*m-1, 0)
				ez.Set(i, 0, k, 2*m, 0)
			}
		}
		if f != nil {
			for n := 0; n < 2*nm-1; n++ {
				if r == 0 && n > 0 {
					break
				}
				ez.Add(i, 0, k, n, c2dt*d.UpDz(f, i, k, n))
			}
		}
	})
}

// divAt is div E at node (i, k) for component n.
func (c cylindrical) divAt(e grid.Vector, i, k, n int) float64 {
	d := c.d
	er, et, ez := e[0], e[1], e[2]
	r := d.nodeRadius(i)
	if r == 0 {
		if n == 0 {
			return 4*er.At(i, 0, k, 0)/d.dr + d.DnDz(ez, i, k, 0)
		}
		return 0
	}
	v := d.DnDrrOverR(er, r, i, k, n) + d.DnDz(ez, i, k, n)
	if n > 0 {
		fm := float64((n + 1) / 2)
		if n%2 == 1 {
			v += fm * et.At(i, 0, k, n+1) / r
		} else {
			v -= fm * et.At(i, 0, k, n-1) / r
		}
	}
	return v
}

func (c cylindrical) evolveF(f *grid.Field, e grid.Vector, rho *grid.Field, dt float64) {
	ncomp := grid.ModeComponents(c.d.nmodes)
	grid.ParallelFor(f.Valid(), func(i, _, k int) {
		for n := 0; n < ncomp; n++ {
			v := c.divAt(e, i, k, n)
			if rho != nil {
				v -= rho.At(i, 0, k, n) / phys.Epsilon0
			}
			f.Add(i, 0, k, n, dt*v)
		}
	})
}

func (c cylindrical) divE(e grid.Vector, div *grid.Field) {
	ncomp := grid.ModeComponents(c.d.nmodes)
	grid.ParallelFor(div.Valid(), func(i, _, k int) {
		for n := 0; n < ncomp; n++ {
			div.Set(i, 0, k, n, c.divAt(e, i, k, n))
		}
	})
}
