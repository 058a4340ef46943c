// Package shape implements the particle shape factors of orders 0 to 3.
package shape

import (
	"errors"
	"fmt"
	"math"
)

// MaxOrder is the highest supported shape order.
const MaxOrder = 3

var ErrOrder = errors.New("shape: unsupported order")

func Validate(order int) error {
	if order < 0 || order > MaxOrder {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrOrder, order, MaxOrder)
	}
	return nil
}

// Compute writes the order+1 weights of the kernel centered on x (in grid
// units) into sx and returns the index of the leftmost point they cover.
// The weights sum to one.
func Compute(order int, sx []float64, x float64) int {
	switch order {
	case 0:
		j := int(math.Floor(x + 0.5))
		sx[0] = 1
		return j
	case 1:
		j := int(math.Floor(x))
		f := x - float64(j)
		sx[0] = 1 - f
		sx[1] = f
		return j
	case 2:
		j := int(math.Floor(x + 0.5))
		f := x - float64(j)
		sx[0] = 0.5 * (0.5 - f) * (0.5 - f)
		sx[1] = 0.75 - f*f
		sx[2] = 0.5 * (0.5 + f) * (0.5 + f)
		return j - 1
	case 3:
		j := int(math.Floor(x))
		f := x - float64(j)
		g := 1 - f
		sx[0] = g * g * g / 6
		sx[1] = 2.0/3.0 - f*f*(1-0.5*f)
		sx[2] = 2.0/3.0 - g*g*(1-0.5*g)
		sx[3] = f * f * f / 6
		return j - 1
	}
	panic(fmt.Sprintf("shape: order %d out of range", order))
}

// ComputeShifted evaluates the kernel at x into a window of order+3
// entries whose entry m is grid index iNew-1+m, iNew being the leftmost
// index returned by Compute for the reference position. Entries the kernel
// does not reach are zero. It returns the kernel's own leftmost index.
//
// The kernel must fit the window: x may not move more than one cell away
// from the reference position.
func ComputeShifted(order int, sx []float64, x float64, iNew int) int {
	var w [MaxOrder + 1]float64
	i := Compute(order, w[:], x)

	for m := 0; m < order+3; m++ {
		sx[m] = 0
	}
	off := i - iNew + 1
	if off < 0 || off+order > order+2 {
		panic(fmt.Sprintf("shape: kernel at %d does not fit window starting at %d", i, iNew-1))
	}
	copy(sx[off:off+order+1], w[:order+1])
	return i
}
