package fdtd

import (
	"fmt"

	"github.com/san-kum/picsim/internal/grid"
)

// CurrentPusher adds a deposited current into split E fields. The PML
// region implements it.
type CurrentPusher interface {
	PushCurrent(e, j grid.Vector, dt float64)
}

// EvolveBPML is EvolveB on split fields: each B component carries two
// sub-components, each E component three.
func (s *Solver) EvolveBPML(b, e grid.Vector, dt float64) {
	k := s.cartesian("EvolveBPML")
	s.mustMatchSplit("B", b, s.layout.B, 2)
	s.mustMatchSplit("E", e, s.layout.E, 3)
	k.evolveBPML(b, e, dt)
}

// EvolveEPML is EvolveE on split fields. When hasParticles is set the
// current j is pushed into E through region after the curl update.
func (s *Solver) EvolveEPML(e, b, j grid.Vector, f *grid.Field, region CurrentPusher, dt float64, hasParticles bool) {
	k := s.cartesian("EvolveEPML")
	s.mustMatchSplit("E", e, s.layout.E, 3)
	s.mustMatchSplit("B", b, s.layout.B, 2)
	if f != nil {
		s.mustMatchSplitScalar("F", f, s.layout.F, 3)
	}
	k.evolveEPML(e, b, f, dt)
	if hasParticles && region != nil && j[0] != nil {
		s.mustMatch("J", j, s.layout.J)
		region.PushCurrent(e, j, dt)
	}
}

// EvolveFPML advances the split F: sub-component a is driven by the
// derivative of E along axis a.
func (s *Solver) EvolveFPML(f *grid.Field, e grid.Vector, dt float64) {
	k := s.cartesian("EvolveFPML")
	s.mustMatchSplitScalar("F", f, s.layout.F, 3)
	s.mustMatchSplit("E", e, s.layout.E, 3)
	k.evolveFPML(f, e, dt)
}

func (s *Solver) mustMatchSplit(name string, v grid.Vector, want [3]grid.Staggering, ncomp int) {
	s.mustMatch(name, v, want)
	for d := 0; d < 3; d++ {
		if v[d].NComp() != ncomp {
			panic(fmt.Errorf("%w: split %s[%d] has %d sub-components, want %d", grid.ErrLayout, name, d, v[d].NComp(), ncomp))
		}
	}
}

func (s *Solver) mustMatchSplitScalar(name string, f *grid.Field, want grid.Staggering, ncomp int) {
	s.mustMatchScalar(name, f, want)
	if f == nil || f.NComp() != ncomp {
		panic(fmt.Errorf("%w: split %s needs %d sub-components", grid.ErrLayout, name, ncomp))
	}
}
