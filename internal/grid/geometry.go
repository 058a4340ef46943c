package grid

import (
	"fmt"
	"strings"
)

type Geometry uint8

const (
	Cartesian3D Geometry = iota
	// CartesianXZ keeps axis 1 (y) degenerate: every field has a single
	// index 0 there and derivatives along y vanish.
	CartesianXZ
	// Cylindrical stores r on axis 0 and z on axis 2, with azimuthal modes
	// in the component index.
	Cylindrical
)

func (g Geometry) String() string {
	switch g {
	case Cartesian3D:
		return "3d"
	case CartesianXZ:
		return "xz"
	case Cylindrical:
		return "rz"
	}
	return fmt.Sprintf("geometry(%d)", uint8(g))
}

func ParseGeometry(s string) (Geometry, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "3d", "xyz", "cartesian":
		return Cartesian3D, nil
	case "xz", "2d":
		return CartesianXZ, nil
	case "rz", "cylindrical":
		return Cylindrical, nil
	}
	return 0, fmt.Errorf("%w: unknown geometry %q", ErrGeometry, s)
}

func (g Geometry) Is2D() bool { return g == CartesianXZ || g == Cylindrical }

// Active reports whether the axis carries a real dimension.
func (g Geometry) Active(axis int) bool {
	return !(g.Is2D() && axis == 1)
}

// Guard returns the guard widths for the geometry: none on a degenerate
// axis.
func (g Geometry) Guard(n int) [3]int {
	if g.Is2D() {
		return [3]int{n, 0, n}
	}
	return [3]int{n, n, n}
}

// ModeComponents is the component count holding nmodes azimuthal modes:
// one real mode 0 plus a real/imaginary pair for every higher mode.
func ModeComponents(nmodes int) int {
	if nmodes < 1 {
		return 1
	}
	return 2*nmodes - 1
}
