package metrics

import (
	"math"

	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/sim"
)

// cellVolume is the volume of one cell; per unit length along y in 2-D.
func cellVolume(st *sim.State) float64 {
	v := st.CellSize[0] * st.CellSize[2]
	if !st.Geometry.Is2D() {
		v *= st.CellSize[1]
	}
	return v
}

// electromagneticEnergy sums eps0/2 (E^2 + c^2 B^2) over the valid boxes,
// every mode component included.
func electromagneticEnergy(st *sim.State) float64 {
	sum := 0.0
	for c := 0; c < 3; c++ {
		sum += sumSquares(st.E[c]) + phys.C2*sumSquares(st.B[c])
	}
	return 0.5 * phys.Epsilon0 * sum * cellVolume(st)
}

func sumSquares(f *grid.Field) float64 {
	s := 0.0
	for n := 0; n < f.NComp(); n++ {
		s += f.SumSquaresValid(n)
	}
	return s
}

// FieldEnergy reports the latest electromagnetic energy [J].
type FieldEnergy struct {
	name   string
	energy float64
}

func NewFieldEnergy() *FieldEnergy {
	return &FieldEnergy{name: "field_energy"}
}

func (e *FieldEnergy) Name() string { return e.name }

func (e *FieldEnergy) Observe(st *sim.State) {
	e.energy = electromagneticEnergy(st)
}

func (e *FieldEnergy) Value() float64 { return e.energy }

func (e *FieldEnergy) Reset() { e.energy = 0 }

// EnergyDrift tracks the largest relative change of the total energy,
// field plus particle kinetic, from its first sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(st *sim.State) {
	energy := electromagneticEnergy(st) + kineticEnergy(st)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
