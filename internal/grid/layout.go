package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrLayout indicates a field whose staggering or shape does not match
	// what a kernel was built for.
	ErrLayout = errors.New("grid: inconsistent staggering layout")

	// ErrGeometry indicates an unknown or unsupported geometry.
	ErrGeometry = errors.New("grid: unsupported geometry")
)

// Layout declares the staggering of every field a solver touches.
type Layout struct {
	Geometry Geometry
	E, B, J  [3]Staggering
	F, Rho   Staggering
}

// YeeLayout is the staggered Yee arrangement: E and J on edges, B on faces,
// F and rho on nodes. In 2-D geometries axis 1 is degenerate and marked
// cell-centered so that it never gains a node point.
func YeeLayout(g Geometry) Layout {
	if g.Is2D() {
		return Layout{
			Geometry: g,
			E: [3]Staggering{
				{Cell, Cell, Node},
				{Node, Cell, Node},
				{Node, Cell, Cell},
			},
			B: [3]Staggering{
				{Node, Cell, Cell},
				{Cell, Cell, Cell},
				{Cell, Cell, Node},
			},
			J: [3]Staggering{
				{Cell, Cell, Node},
				{Node, Cell, Node},
				{Node, Cell, Cell},
			},
			F:   Staggering{Node, Cell, Node},
			Rho: Staggering{Node, Cell, Node},
		}
	}
	return Layout{
		Geometry: g,
		E: [3]Staggering{
			{Cell, Node, Node},
			{Node, Cell, Node},
			{Node, Node, Cell},
		},
		B: [3]Staggering{
			{Node, Cell, Cell},
			{Cell, Node, Cell},
			{Cell, Cell, Node},
		},
		J: [3]Staggering{
			{Cell, Node, Node},
			{Node, Cell, Node},
			{Node, Node, Cell},
		},
		F:   AllNodes,
		Rho: AllNodes,
	}
}

// NodalLayout places every component on the nodes.
func NodalLayout(g Geometry) Layout {
	n := AllNodes
	if g.Is2D() {
		n = Staggering{Node, Cell, Node}
	}
	return Layout{
		Geometry: g,
		E:        [3]Staggering{n, n, n},
		B:        [3]Staggering{n, n, n},
		J:        [3]Staggering{n, n, n},
		F:        n,
		Rho:      n,
	}
}

func (l Layout) NewE(cells Box, guard, ncomp int) Vector {
	return l.newVector(cells, l.E, guard, ncomp)
}

func (l Layout) NewB(cells Box, guard, ncomp int) Vector {
	return l.newVector(cells, l.B, guard, ncomp)
}

func (l Layout) NewJ(cells Box, guard, ncomp int) Vector {
	return l.newVector(cells, l.J, guard, ncomp)
}

func (l Layout) NewF(cells Box, guard, ncomp int) *Field {
	return NewField(cells.Convert(l.F), l.F, ncomp, l.Geometry.Guard(guard))
}

func (l Layout) NewRho(cells Box, guard, ncomp int) *Field {
	return NewField(cells.Convert(l.Rho), l.Rho, ncomp, l.Geometry.Guard(guard))
}

func (l Layout) newVector(cells Box, stag [3]Staggering, guard, ncomp int) Vector {
	var v Vector
	for d := 0; d < 3; d++ {
		v[d] = NewField(cells.Convert(stag[d]), stag[d], ncomp, l.Geometry.Guard(guard))
	}
	return v
}

// CheckVector verifies that every component of v carries the declared
// staggering.
func CheckVector(name string, v Vector, want [3]Staggering) error {
	for d := 0; d < 3; d++ {
		if v[d] == nil {
			return fmt.Errorf("%w: %s[%d] is nil", ErrLayout, name, d)
		}
		if v[d].Type() != want[d] {
			return fmt.Errorf("%w: %s[%d] is %v, want %v", ErrLayout, name, d, v[d].Type(), want[d])
		}
	}
	return nil
}

// CheckScalar is CheckVector for a single field; nil is accepted.
func CheckScalar(name string, f *Field, want Staggering) error {
	if f != nil && f.Type() != want {
		return fmt.Errorf("%w: %s is %v, want %v", ErrLayout, name, f.Type(), want)
	}
	return nil
}
