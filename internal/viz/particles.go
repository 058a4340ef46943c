package viz

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/sim"
)

// ParticleView projects every particle of st onto a width x height Braille
// canvas spanning the domain extent: z across, x upwards (r in RZ).
func ParticleView(st *sim.State, extent [3]float64, width, height int) *Canvas {
	c := NewCanvas(width, height)
	if st == nil || extent[0] <= 0 || extent[2] <= 0 {
		return c
	}
	for _, sp := range st.Species {
		b := &sp.Batch
		for ip := 0; ip < b.Len(); ip++ {
			up := b.X[ip]
			if st.Geometry == grid.Cylindrical {
				up = math.Hypot(b.X[ip], b.Y[ip])
			}
			c.Plot(b.Z[ip]/extent[2], up/extent[0])
		}
	}
	return c
}
