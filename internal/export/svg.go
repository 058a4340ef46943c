package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/picsim/internal/analysis"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// braille bit per dot row and column, as laid out by viz.Canvas.
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG draws every dot of a Braille canvas as a circle, scale
// pixels apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}
	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := canvas.Grid[row][col] - 0x2800
			if pattern <= 0 {
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := (float64(2*col+dx) + 0.5) * scale
					cy := (float64(4*row+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// FieldToSVG draws mode 0 of f on the x-z plane through the middle of y as
// one square of cell pixels per point, z across and x upwards. Opacity
// follows |value| relative to the slice maximum; positive and negative
// values take their own color.
func FieldToSVG(f *grid.Field, cell float64, positive, negative string) string {
	if f == nil {
		return ""
	}
	v := f.Valid()
	j := (v.Lo[1] + v.Hi[1]) / 2
	nz, nx := v.Size(2), v.Size(0)

	peak := 0.0
	for i := v.Lo[0]; i <= v.Hi[0]; i++ {
		for k := v.Lo[2]; k <= v.Hi[2]; k++ {
			peak = math.Max(peak, math.Abs(f.At(i, j, k, 0)))
		}
	}

	var sb strings.Builder
	header(&sb, float64(nz)*cell, float64(nx)*cell)
	if peak > 0 {
		for i := v.Lo[0]; i <= v.Hi[0]; i++ {
			y := float64(v.Hi[0]-i) * cell
			for k := v.Lo[2]; k <= v.Hi[2]; k++ {
				val := f.At(i, j, k, 0)
				if val == 0 {
					continue
				}
				color := positive
				if val < 0 {
					color = negative
				}
				fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"%s\" fill-opacity=\"%.3f\"/>\n",
					float64(k-v.Lo[2])*cell, y, cell, cell, color, math.Abs(val)/peak)
			}
		}
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// PhaseToSVG scatters a phase portrait over width x height pixels using
// the portrait's padded bounds.
func PhaseToSVG(p *analysis.PhasePortrait2D, width, height int, color string) string {
	if p == nil || len(p.Points) == 0 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<g fill=\"%s\" fill-opacity=\"0.6\">\n", color)
	for _, pt := range p.Points {
		x := (pt.X - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (pt.Y-minY)/(maxY-minY)*float64(height)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"1.2\"/>\n", x, y)
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}
