package fdtd

import (
	"fmt"
	"math"

	"github.com/san-kum/picsim/internal/grid"
)

// Stencil holds the per-axis finite-difference coefficients. For the
// lowest-order families each axis carries a single entry, the inverse cell
// size.
type Stencil struct {
	X, Y, Z []float64
}

// NewStencil builds the coefficients for a cell size. Degenerate axes of
// the 2-D geometries are not checked and get a zero coefficient.
func NewStencil(g grid.Geometry, cellSize [3]float64) (Stencil, error) {
	var inv [3]float64
	for a := 0; a < 3; a++ {
		if !g.Active(a) {
			continue
		}
		d := cellSize[a]
		if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return Stencil{}, fmt.Errorf("%w: cell size along axis %d is %g", ErrConfig, a, d)
		}
		inv[a] = 1 / d
	}
	return Stencil{X: []float64{inv[0]}, Y: []float64{inv[1]}, Z: []float64{inv[2]}}, nil
}
