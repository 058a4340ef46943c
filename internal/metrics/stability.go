package metrics

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/sim"
)

func maxAbs(v grid.Vector) float64 {
	m := 0.0
	for _, f := range v {
		for n := 0; n < f.NComp(); n++ {
			m = math.Max(m, f.MaxAbsValid(n))
		}
	}
	return m
}

// MaxField reports the largest |E| component value of the last sample.
type MaxField struct {
	name string
	max  float64
}

func NewMaxField() *MaxField {
	return &MaxField{name: "max_e"}
}

func (m *MaxField) Name() string { return m.name }

func (m *MaxField) Observe(st *sim.State) { m.max = maxAbs(st.E) }

func (m *MaxField) Value() float64 { return m.max }

func (m *MaxField) Reset() { m.max = 0 }

// Stability is the fraction of samples whose E field stays finite and
// below threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st *sim.State) {
	s.samples++
	if m := maxAbs(st.E); !st.E.IsFinite() || m > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
