package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/sim"
)

// PhasePortrait2D holds one species' phase space: position along one axis
// against momentum u/c along another.
type PhasePortrait2D struct {
	PosAxis, MomAxis int
	Points           []struct{ X, Y float64 }
}

// PhaseSpace samples the current particles of sp. Positions are in metres.
func PhaseSpace(sp *sim.Species, posAxis, momAxis int) *PhasePortrait2D {
	if sp == nil || posAxis < 0 || posAxis > 2 || momAxis < 0 || momAxis > 2 {
		return nil
	}
	b := &sp.Batch
	pos := [3][]float64{b.X, b.Y, b.Z}[posAxis]
	mom := [3][]float64{b.Ux, b.Uy, b.Uz}[momAxis]

	portrait := &PhasePortrait2D{
		PosAxis: posAxis,
		MomAxis: momAxis,
		Points:  make([]struct{ X, Y float64 }, 0, b.Len()),
	}
	for ip := 0; ip < b.Len(); ip++ {
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: pos[ip],
			Y: mom[ip] / phys.C,
		})
	}
	return portrait
}

// Bounds returns the extent of the sampled points, padded by 10% on each
// side. A flat extent is widened to unit size.
func (p *PhasePortrait2D) Bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	minY, maxY = math.Inf(1), math.Inf(-1)
	for _, pt := range p.Points {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	pad := func(lo, hi float64) (float64, float64) {
		r := hi - lo
		if r == 0 {
			r = math.Max(math.Abs(lo), 1)
		}
		return lo - 0.1*r, hi + 0.1*r
	}
	minX, maxX = pad(minX, maxX)
	minY, maxY = pad(minY, maxY)
	return minX, maxX, minY, maxY
}

// PhasePortraitToASCII renders the portrait on a width x height canvas.
// Occupied cells are shaded by particle count and the u = 0 line is drawn
// when it is in range.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}
	minX, maxX, minY, maxY := portrait.Bounds()

	counts := make([][]int, height)
	for row := range counts {
		counts[row] = make([]int, width)
	}
	for _, pt := range portrait.Points {
		col := int((pt.X - minX) / (maxX - minX) * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/(maxY-minY)*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			counts[row][col]++
		}
	}

	zeroRow := -1
	if minY <= 0 && maxY >= 0 {
		zeroRow = height - 1 - int((0-minY)/(maxY-minY)*float64(height-1))
	}

	shades := []rune{'·', '•', '●'}
	var sb strings.Builder
	for row := range counts {
		for _, n := range counts[row] {
			switch {
			case n == 0 && row == zeroRow:
				sb.WriteRune('─')
			case n == 0:
				sb.WriteRune(' ')
			case n < 3:
				sb.WriteRune(shades[0])
			case n < 10:
				sb.WriteRune(shades[1])
			default:
				sb.WriteRune(shades[2])
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
