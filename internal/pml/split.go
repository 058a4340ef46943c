package pml

import (
	"fmt"

	"github.com/san-kum/picsim/internal/grid"
)

// Split holds the split fields of a region: three sub-components per E
// component (two curl-driven, one driven by grad F), two per B component
// and one per axis for F.
type Split struct {
	E, B grid.Vector
	F    *grid.Field
}

// NewSplitFields allocates zeroed split fields over the region's domain.
// withF adds the split divergence-cleaning field.
func (r *Region) NewSplitFields(withF bool) *Split {
	s := &Split{
		E: r.layout.NewE(r.cfg.Domain, r.cfg.Guard, 3),
		B: r.layout.NewB(r.cfg.Domain, r.cfg.Guard, 2),
	}
	if withF {
		s.F = r.layout.NewF(r.cfg.Domain, r.cfg.Guard, 3)
	}
	return s
}

// Load puts plain fields into the first sub-component and clears the
// others. f may be nil.
func (s *Split) Load(e, b grid.Vector, f *grid.Field) {
	for c := 0; c < 3; c++ {
		load(s.E[c], e[c])
		load(s.B[c], b[c])
	}
	if s.F != nil && f != nil {
		load(s.F, f)
	}
}

// Totals writes the sum of the sub-components into plain fields, over the
// whole grown box. f may be nil.
func (s *Split) Totals(e, b grid.Vector, f *grid.Field) {
	for c := 0; c < 3; c++ {
		sum(e[c], s.E[c])
		sum(b[c], s.B[c])
	}
	if s.F != nil && f != nil {
		sum(f, s.F)
	}
}

func checkPair(plain, split *grid.Field) {
	if plain.Grown() != split.Grown() || plain.Type() != split.Type() {
		panic(fmt.Errorf("%w: split %v%v vs plain %v%v", grid.ErrLayout,
			split.Type(), split.Grown(), plain.Type(), plain.Grown()))
	}
}

func load(dst, src *grid.Field) {
	checkPair(src, dst)
	n := src.Grown().NumPts()
	d := dst.Data()
	for i := range d {
		d[i] = 0
	}
	copy(d[:n], src.Data()[:n])
}

func sum(dst, src *grid.Field) {
	checkPair(dst, src)
	n := dst.Grown().NumPts()
	d, s := dst.Data(), src.Data()
	for p := 0; p < n; p++ {
		v := 0.0
		for c := 0; c < src.NComp(); c++ {
			v += s[c*n+p]
		}
		d[p] = v
	}
}
