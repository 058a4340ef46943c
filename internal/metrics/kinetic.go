package metrics

import (
	"math"

	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/sim"
)

func kineticEnergy(st *sim.State) float64 {
	sum := 0.0
	for _, sp := range st.Species {
		b := &sp.Batch
		for ip := 0; ip < b.Len(); ip++ {
			u2 := (b.Ux[ip]*b.Ux[ip] + b.Uy[ip]*b.Uy[ip] + b.Uz[ip]*b.Uz[ip]) * phys.InvC2
			// gamma - 1 without cancellation for slow particles.
			gm1 := u2 / (math.Sqrt(1+u2) + 1)
			sum += b.W[ip] * sp.Mass * phys.C2 * gm1
		}
	}
	return sum
}

// KineticEnergy reports the latest particle kinetic energy [J].
type KineticEnergy struct {
	name   string
	energy float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(st *sim.State) { k.energy = kineticEnergy(st) }

func (k *KineticEnergy) Value() float64 { return k.energy }

func (k *KineticEnergy) Reset() { k.energy = 0 }

// ParticleCount reports the number of live macro-particles.
type ParticleCount struct {
	name  string
	count int
}

func NewParticleCount() *ParticleCount {
	return &ParticleCount{name: "particles"}
}

func (p *ParticleCount) Name() string { return p.name }

func (p *ParticleCount) Observe(st *sim.State) {
	p.count = 0
	for _, sp := range st.Species {
		p.count += sp.Batch.Len()
	}
}

func (p *ParticleCount) Value() float64 { return float64(p.count) }

func (p *ParticleCount) Reset() { p.count = 0 }
