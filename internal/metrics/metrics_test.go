package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/sim"
)

func testState(t *testing.T) *sim.State {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cells = [3]int{4, 4, 4}
	cfg.CellSize = [3]float64{1e-6, 2e-6, 1e-6}
	s, err := sim.Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s.State()
}

func TestFieldEnergy(t *testing.T) {
	st := testState(t)
	st.E[2].Fill(3)
	m := NewFieldEnergy()
	m.Observe(st)

	n := float64(st.E[2].Valid().NumPts())
	want := 0.5 * phys.Epsilon0 * 9 * n * 2e-18
	if math.Abs(m.Value()-want) > 1e-12*want {
		t.Errorf("expected energy %g, got %g", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestKineticEnergy(t *testing.T) {
	st := testState(t)
	sp := &sim.Species{Name: "e", Mass: phys.Me}
	sp.Batch.Append(1e-6, 1e-6, 1e-6, 0.75*phys.C, 0, 0, 2)
	st.Species = []*sim.Species{sp}

	m := NewKineticEnergy()
	m.Observe(st)
	want := 2 * phys.Me * phys.C2 * (math.Sqrt(1+0.75*0.75) - 1)
	if math.Abs(m.Value()-want) > 1e-12*want {
		t.Errorf("expected %g, got %g", want, m.Value())
	}

	count := NewParticleCount()
	count.Observe(st)
	if count.Value() != 1 {
		t.Errorf("expected 1 particle, got %v", count.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	st := testState(t)
	m := NewEnergyDrift()

	st.E[0].Fill(1)
	m.Observe(st)
	if m.Value() != 0 {
		t.Errorf("expected no drift on first sample, got %v", m.Value())
	}

	st.E[0].Fill(math.Sqrt(1.1))
	m.Observe(st)
	if math.Abs(m.Value()-0.1) > 1e-9 {
		t.Errorf("expected drift 0.1, got %v", m.Value())
	}

	st.E[0].Fill(1)
	m.Observe(st)
	if math.Abs(m.Value()-0.1) > 1e-9 {
		t.Errorf("drift should keep its maximum, got %v", m.Value())
	}
}

func TestGaussResidual(t *testing.T) {
	st := testState(t)
	st.Rho.Fill(2e-3)
	m := NewGaussResidual()
	m.Observe(st)
	if math.Abs(m.Value()-2e-3) > 1e-15 {
		t.Errorf("expected residual 2e-3, got %v", m.Value())
	}

	// A linear Ex with slope rho/eps0 satisfies Gauss's law exactly.
	ex := st.E[0]
	g := ex.Grown()
	slope := 2e-3 / phys.Epsilon0
	for k := g.Lo[2]; k <= g.Hi[2]; k++ {
		for j := g.Lo[1]; j <= g.Hi[1]; j++ {
			for i := g.Lo[0]; i <= g.Hi[0]; i++ {
				ex.Set(i, j, k, 0, slope*(float64(i)+0.5)*st.CellSize[0])
			}
		}
	}
	m.Observe(st)
	if m.Value() > 1e-12 {
		t.Errorf("expected zero residual, got %v", m.Value())
	}
}

func TestCurrentSum(t *testing.T) {
	st := testState(t)
	st.J[2].Fill(5)
	m := NewCurrentSum(2)
	if m.Name() != "current_z" {
		t.Errorf("unexpected name %s", m.Name())
	}
	m.Observe(st)
	want := 5 * float64(st.J[2].Valid().NumPts()) * 2e-18
	if math.Abs(m.Value()-want) > 1e-12*want {
		t.Errorf("expected %g, got %g", want, m.Value())
	}
}

func TestStability(t *testing.T) {
	st := testState(t)
	m := NewStability(10)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %v", m.Value())
	}

	m.Observe(st)
	st.E[1].Fill(20)
	m.Observe(st)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", m.Value())
	}

	st.E[1].Fill(math.NaN())
	m.Observe(st)
	if math.Abs(m.Value()-1.0/3.0) > 1e-12 {
		t.Errorf("expected 1/3, got %v", m.Value())
	}

	mf := NewMaxField()
	st.E[1].Fill(-7)
	mf.Observe(st)
	if mf.Value() != 7 {
		t.Errorf("expected max 7, got %v", mf.Value())
	}
}

func TestDefaultNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}
