package grid

import "fmt"

type IndexType uint8

const (
	Cell IndexType = iota
	Node
)

func (t IndexType) String() string {
	if t == Node {
		return "node"
	}
	return "cell"
}

// Staggering is the per-axis centering of a field component.
type Staggering [3]IndexType

var (
	AllNodes = Staggering{Node, Node, Node}
	AllCells = Staggering{Cell, Cell, Cell}
)

func (s Staggering) String() string {
	return fmt.Sprintf("(%s,%s,%s)", s[0], s[1], s[2])
}

// Box is an inclusive index box.
type Box struct {
	Lo, Hi [3]int
}

func NewBox(lo, hi [3]int) Box {
	return Box{Lo: lo, Hi: hi}
}

// CellBox returns the cell box [0, n-1] along each axis.
func CellBox(n [3]int) Box {
	return Box{Hi: [3]int{n[0] - 1, n[1] - 1, n[2] - 1}}
}

func (b Box) Size(axis int) int { return b.Hi[axis] - b.Lo[axis] + 1 }

func (b Box) NumPts() int {
	if b.Empty() {
		return 0
	}
	return b.Size(0) * b.Size(1) * b.Size(2)
}

func (b Box) Empty() bool {
	return b.Hi[0] < b.Lo[0] || b.Hi[1] < b.Lo[1] || b.Hi[2] < b.Lo[2]
}

func (b Box) Contains(i, j, k int) bool {
	return b.Lo[0] <= i && i <= b.Hi[0] &&
		b.Lo[1] <= j && j <= b.Hi[1] &&
		b.Lo[2] <= k && k <= b.Hi[2]
}

func (b Box) ContainsBox(o Box) bool {
	return b.Contains(o.Lo[0], o.Lo[1], o.Lo[2]) && b.Contains(o.Hi[0], o.Hi[1], o.Hi[2])
}

func (b Box) Grow(n [3]int) Box {
	for a := 0; a < 3; a++ {
		b.Lo[a] -= n[a]
		b.Hi[a] += n[a]
	}
	return b
}

// Convert turns a cell box into the index box of a field with the given
// staggering: node-centered axes gain one point on the high side.
func (b Box) Convert(s Staggering) Box {
	for a := 0; a < 3; a++ {
		if s[a] == Node {
			b.Hi[a]++
		}
	}
	return b
}

func (b Box) Intersect(o Box) Box {
	for a := 0; a < 3; a++ {
		b.Lo[a] = max(b.Lo[a], o.Lo[a])
		b.Hi[a] = min(b.Hi[a], o.Hi[a])
	}
	return b
}

func (b Box) String() string {
	return fmt.Sprintf("[%v..%v]", b.Lo, b.Hi)
}
