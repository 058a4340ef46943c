package viz

import (
	"math"
	"strings"

	"github.com/san-kum/picsim/internal/grid"
)

// ramp shades |value| / max from blank to full.
var ramp = []rune(" .:-=+*#%@")

// FieldMap renders mode 0 of f on the x-z plane through the middle of y,
// with z across and x upwards, sampled at width x height points. Each
// sample is the nearest valid point; the shade is |value| relative to the
// slice maximum. It also returns that maximum.
func FieldMap(f *grid.Field, width, height int) (string, float64) {
	if f == nil || width < 1 || height < 1 {
		return "", 0
	}
	v := f.Valid()
	j := (v.Lo[1] + v.Hi[1]) / 2

	sample := func(col, row int) float64 {
		k := v.Lo[2] + col*v.Size(2)/width
		i := v.Hi[0] - row*v.Size(0)/height
		return f.At(i, j, k, 0)
	}

	peak := 0.0
	vals := make([][]float64, height)
	for row := range vals {
		vals[row] = make([]float64, width)
		for col := range vals[row] {
			vals[row][col] = sample(col, row)
			peak = math.Max(peak, math.Abs(vals[row][col]))
		}
	}

	var b strings.Builder
	for _, line := range vals {
		for _, x := range line {
			idx := 0
			if peak > 0 {
				idx = int(math.Abs(x) / peak * float64(len(ramp)-1))
			}
			b.WriteRune(ramp[min(idx, len(ramp)-1)])
		}
		b.WriteByte('\n')
	}
	return b.String(), peak
}
