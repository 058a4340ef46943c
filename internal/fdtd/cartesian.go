package fdtd

import (
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

// cartesian instantiates the shared kernel bodies for one derivative
// family. The 2-D families return zero y derivatives, so the same bodies
// serve XZ.
type cartesian[D derivatives] struct {
	d D
}

func (c cartesian[D]) evolveB(b, e grid.Vector, dt float64) {
	d := c.d
	bx, by, bz := b[0], b[1], b[2]
	ex, ey, ez := e[0], e[1], e[2]

	grid.ParallelFor(bx.Valid(), func(i, j, k int) {
		bx.Add(i, j, k, 0, -dt*(d.UpDy(ez, i, j, k, 0)-d.UpDz(ey, i, j, k, 0)))
	})
	grid.ParallelFor(by.Valid(), func(i, j, k int) {
		by.Add(i, j, k, 0, -dt*(d.UpDz(ex, i, j, k, 0)-d.UpDx(ez, i, j, k, 0)))
	})
	grid.ParallelFor(bz.Valid(), func(i, j, k int) {
		bz.Add(i, j, k, 0, -dt*(d.UpDx(ey, i, j, k, 0)-d.UpDy(ex, i, j, k, 0)))
	})
}

func (c cartesian[D]) evolveE(e, b, jv grid.Vector, f *grid.Field, dt float64) {
	d := c.d
	ex, ey, ez := e[0], e[1], e[2]
	bx, by, bz := b[0], b[1], b[2]
	jx, jy, jz := jv[0], jv[1], jv[2]
	c2dt := phys.C2 * dt
	mu0c2dt := dt / phys.Epsilon0

	grid.ParallelFor(ex.Valid(), func(i, j, k int) {
		v := c2dt*(-d.DnDz(by, i, j, k, 0)+d.DnDy(bz, i, j, k, 0)) - mu0c2dt*jx.At(i, j, k, 0)
		if f != nil {
			v += c2dt * d.UpDx(f, i, j, k, 0)
		}
		ex.Add(i, j, k, 0, v)
	})
	grid.ParallelFor(ey.Valid(), func(i, j, k int) {
		v := c2dt*(-d.DnDx(bz, i, j, k, 0)+d.DnDz(bx, i, j, k, 0)) - mu0c2dt*jy.At(i, j, k, 0)
		if f != nil {
			v += c2dt * d.UpDy(f, i, j, k, 0)
		}
		ey.Add(i, j, k, 0, v)
	})
	grid.ParallelFor(ez.Valid(), func(i, j, k int) {
		v := c2dt*(-d.DnDy(bx, i, j, k, 0)+d.DnDx(by, i, j, k, 0)) - mu0c2dt*jz.At(i, j, k, 0)
		if f != nil {
			v += c2dt * d.UpDz(f, i, j, k, 0)
		}
		ez.Add(i, j, k, 0, v)
	})
}

func (c cartesian[D]) evolveF(f *grid.Field, e grid.Vector, rho *grid.Field, dt float64) {
	d := c.d
	ex, ey, ez := e[0], e[1], e[2]
	grid.ParallelFor(f.Valid(), func(i, j, k int) {
		v := d.DnDx(ex, i, j, k, 0) + d.DnDy(ey, i, j, k, 0) + d.DnDz(ez, i, j, k, 0)
		if rho != nil {
			v -= rho.At(i, j, k, 0) / phys.Epsilon0
		}
		f.Add(i, j, k, 0, dt*v)
	})
}

func (c cartesian[D]) divE(e grid.Vector, div *grid.Field) {
	d := c.d
	ex, ey, ez := e[0], e[1], e[2]
	grid.ParallelFor(div.Valid(), func(i, j, k int) {
		div.Set(i, j, k, 0, d.DnDx(ex, i, j, k, 0)+d.DnDy(ey, i, j, k, 0)+d.DnDz(ez, i, j, k, 0))
	})
}

// The split-field kernels below store, for component c, sub-component 0
// driven by axis (c+1)%3, sub-component 1 by axis (c+2)%3 and, for E,
// sub-component 2 by the F gradient along c. Derivatives of a split field
// act on the sum of its sub-components.

func (c cartesian[D]) evolveBPML(b, e grid.Vector, dt float64) {
	d := c.d
	for comp := 0; comp < 3; comp++ {
		a, o := (comp+1)%3, (comp+2)%3
		bc, ea, eo := b[comp], e[a], e[o]
		ne := ea.NComp()
		grid.ParallelFor(bc.Valid(), func(i, j, k int) {
			bc.Add(i, j, k, 0, -dt*upSum(d, a, eo, i, j, k, ne))
			bc.Add(i, j, k, 1, dt*upSum(d, o, ea, i, j, k, ne))
		})
	}
}

func (c cartesian[D]) evolveEPML(e, b grid.Vector, f *grid.Field, dt float64) {
	d := c.d
	c2dt := phys.C2 * dt
	for comp := 0; comp < 3; comp++ {
		a, o := (comp+1)%3, (comp+2)%3
		ec, ba, bo := e[comp], b[a], b[o]
		nb := ba.NComp()
		grid.ParallelFor(ec.Valid(), func(i, j, k int) {
			ec.Add(i, j, k, 0, c2dt*downSum(d, a, bo, i, j, k, nb))
			ec.Add(i, j, k, 1, -c2dt*downSum(d, o, ba, i, j, k, nb))
			if f != nil {
				ec.Add(i, j, k, 2, c2dt*upSum(d, comp, f, i, j, k, f.NComp()))
			}
		})
	}
}

func (c cartesian[D]) evolveFPML(f *grid.Field, e grid.Vector, dt float64) {
	d := c.d
	ne := e[0].NComp()
	grid.ParallelFor(f.Valid(), func(i, j, k int) {
		for a := 0; a < 3; a++ {
			f.Add(i, j, k, a, dt*downSum(d, a, e[a], i, j, k, ne))
		}
	})
}

func (c cartesian[D]) macroscopicE(e, b, jv grid.Vector, m *Medium, dt float64) {
	d := c.d
	ex, ey, ez := e[0], e[1], e[2]
	bx, by, bz := b[0], b[1], b[2]
	jx, jy, jz := jv[0], jv[1], jv[2]
	invMu := 1 / m.Mu

	grid.ParallelFor(ex.Valid(), func(i, j, k int) {
		alpha, beta := m.coefficients(ex.Type(), i, j, k, dt)
		curl := (-d.DnDz(by, i, j, k, 0) + d.DnDy(bz, i, j, k, 0)) * invMu
		ex.Set(i, j, k, 0, alpha*ex.At(i, j, k, 0)+beta*(curl-jx.At(i, j, k, 0)))
	})
	grid.ParallelFor(ey.Valid(), func(i, j, k int) {
		alpha, beta := m.coefficients(ey.Type(), i, j, k, dt)
		curl := (-d.DnDx(bz, i, j, k, 0) + d.DnDz(bx, i, j, k, 0)) * invMu
		ey.Set(i, j, k, 0, alpha*ey.At(i, j, k, 0)+beta*(curl-jy.At(i, j, k, 0)))
	})
	grid.ParallelFor(ez.Valid(), func(i, j, k int) {
		alpha, beta := m.coefficients(ez.Type(), i, j, k, dt)
		curl := (-d.DnDy(bx, i, j, k, 0) + d.DnDx(by, i, j, k, 0)) * invMu
		ez.Set(i, j, k, 0, alpha*ez.At(i, j, k, 0)+beta*(curl-jz.At(i, j, k, 0)))
	})
}
