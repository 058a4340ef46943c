package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
)

const um = 1e-6

func smallConfig(geometry string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Name = "test"
	cfg.Geometry = geometry
	cfg.Cells = [3]int{12, 12, 12}
	if geometry != "3d" {
		cfg.Cells[1] = 1
	}
	cfg.CellSize = [3]float64{um, um, um}
	cfg.Steps = 5
	return cfg
}

func beam(count int, momentum [3]float64) config.SpeciesConfig {
	return config.SpeciesConfig{
		Name: "electrons", Charge: -phys.Q, Mass: phys.Me, Count: count, Weight: 1e3,
		Center: [3]float64{6 * um, 6 * um, 6 * um}, Spread: [3]float64{0.7 * um, 0.7 * um, 0.7 * um},
		Momentum: momentum, Seed: 11,
	}
}

func mustBuild(t *testing.T, cfg *config.Config) *Simulator {
	t.Helper()
	s, err := Build(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return s
}

func fieldEnergy(st *State) float64 {
	sum := 0.0
	for c := 0; c < 3; c++ {
		for n := 0; n < st.E[c].NComp(); n++ {
			sum += st.E[c].SumSquaresValid(n) + phys.C2*st.B[c].SumSquaresValid(n)
		}
	}
	return sum
}

type countingMetric struct {
	count int
	last  int
}

func (m *countingMetric) Name() string { return "count" }
func (m *countingMetric) Observe(st *State) {
	m.count++
	m.last = st.Step
}
func (m *countingMetric) Value() float64 { return float64(m.last) }
func (m *countingMetric) Reset()         { m.count, m.last = 0, 0 }

func TestSimulatorRun(t *testing.T) {
	cfg := smallConfig("3d")
	cfg.Species = []config.SpeciesConfig{beam(100, [3]float64{0, 0, 0.5})}
	s := mustBuild(t, cfg)

	metric := &countingMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 5 {
		t.Errorf("expected 5 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 6 {
		t.Errorf("expected 6 samples, got %d", len(result.Times))
	}
	if len(result.History["count"]) != 6 || metric.count != 6 {
		t.Errorf("expected 6 observations, got %d", metric.count)
	}
	if result.Metrics["count"] != 5 {
		t.Errorf("expected final metric 5, got %v", result.Metrics["count"])
	}
	if got, want := s.State().Time, 5*s.Dt(); math.Abs(got-want) > 1e-12*want {
		t.Errorf("expected time %g, got %g", want, got)
	}
	if s.State().J[2].MaxAbsValid(0) == 0 {
		t.Error("expected a non-zero Jz from the beam")
	}
}

func TestSimulatorDiagEvery(t *testing.T) {
	cfg := smallConfig("xz")
	cfg.DiagEvery = 2
	s := mustBuild(t, cfg)
	s.AddMetric(&countingMetric{})

	result, err := s.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	// Initial sample, steps 2 and 4, and the last step.
	if len(result.Times) != 4 {
		t.Errorf("expected 4 samples, got %d", len(result.Times))
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"bad geometry", func(c *config.Config) { c.Geometry = "1d" }},
		{"rz pml", func(c *config.Config) { c.Geometry = "rz"; c.PML = &config.PMLConfig{Thickness: 2} }},
		{"order", func(c *config.Config) { c.Order = 7 }},
		{"cfl above 1", func(c *config.Config) { c.CFL = 1.5 }},
		{"dt above courant limit", func(c *config.Config) { c.Dt = 2 * c.CourantLimit() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig("3d")
			tt.modify(cfg)
			if _, err := Build(cfg); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestRunNegativeSteps(t *testing.T) {
	s := mustBuild(t, smallConfig("3d"))
	if _, err := s.Run(context.Background(), -1); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestRunCanceled(t *testing.T) {
	s := mustBuild(t, smallConfig("3d"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := s.Run(ctx, 3)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

func TestParticlesAbsorbedAtBoundary(t *testing.T) {
	cfg := smallConfig("xz")
	sp := beam(50, [3]float64{0, 0, 20})
	sp.Center = [3]float64{6 * um, 0, 11.5 * um}
	sp.Spread = [3]float64{0.5 * um, 0, 0.1 * um}
	cfg.Species = []config.SpeciesConfig{sp}
	s := mustBuild(t, cfg)

	before := s.NumParticles()
	if before == 0 {
		t.Fatal("expected particles inside the domain")
	}
	if _, err := s.Run(context.Background(), 3); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if s.NumParticles() != 0 {
		t.Errorf("expected every particle absorbed, %d left", s.NumParticles())
	}
	if s.Absorbed() != before {
		t.Errorf("expected %d absorbed, got %d", before, s.Absorbed())
	}
}

// gaussDefect returns div E - rho/eps0 over the interior nodes of every
// component. In rz the nodes start on the axis.
func gaussDefect(s *Simulator) []float64 {
	st := s.State()
	l := st.Solver.Layout()
	ncomp := st.Rho.NComp()
	div := l.NewRho(s.cells, s.guard, ncomp)
	st.Solver.ComputeDivE(st.E, div)
	v := div.Valid()
	jlo, jhi := v.Lo[1]+1, v.Hi[1]-1
	if st.Geometry.Is2D() {
		jlo, jhi = v.Lo[1], v.Hi[1]
	}
	ilo := v.Lo[0] + 1
	if st.Geometry == grid.Cylindrical {
		ilo = v.Lo[0]
	}
	var out []float64
	for n := 0; n < ncomp; n++ {
		for k := v.Lo[2] + 1; k < v.Hi[2]; k++ {
			for j := jlo; j <= jhi; j++ {
				for i := ilo; i < v.Hi[0]; i++ {
					out = append(out, div.At(i, j, k, n)-st.Rho.At(i, j, k, n)/phys.Epsilon0)
				}
			}
		}
	}
	return out
}

// checkGaussDrift steps s once, then five more times, and fails if the
// Gauss defect moved by more than rounding.
func checkGaussDrift(t *testing.T, s *Simulator) {
	t.Helper()
	ctx := context.Background()
	if err := s.Step(ctx); err != nil {
		t.Fatal(err)
	}
	first := gaussDefect(s)
	if len(first) == 0 {
		t.Fatal("no interior nodes checked")
	}
	for i := 0; i < 5; i++ {
		if err := s.Step(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if s.Absorbed() != 0 {
		t.Fatalf("test beam left the domain: %d absorbed", s.Absorbed())
	}
	last := gaussDefect(s)

	scale := s.State().Rho.MaxAbsValid(0) / phys.Epsilon0
	if scale == 0 {
		t.Fatal("no charge deposited")
	}
	for n := range first {
		if d := math.Abs(last[n] - first[n]); d > 1e-9*scale {
			t.Fatalf("gauss defect drifted by %g (scale %g) at node %d", d, scale, n)
		}
	}
}

func TestEsirkepovPreservesGaussLaw(t *testing.T) {
	cfg := smallConfig("3d")
	cfg.Order = 2
	cfg.Species = []config.SpeciesConfig{beam(300, [3]float64{0.1, -0.1, 0.2})}
	checkGaussDrift(t, mustBuild(t, cfg))
}

func TestEsirkepovPreservesGaussLawXZ(t *testing.T) {
	cfg := smallConfig("xz")
	cfg.Order = 3
	cfg.Species = []config.SpeciesConfig{beam(300, [3]float64{0.1, 0.3, -0.2})}
	checkGaussDrift(t, mustBuild(t, cfg))
}

func TestEsirkepovPreservesGaussLawRZ(t *testing.T) {
	for _, order := range []int{1, 2} {
		cfg := smallConfig("rz")
		cfg.Modes = 2
		cfg.Order = order
		sp := beam(400, [3]float64{0.1, -0.1, 0.2})
		sp.Center = [3]float64{1.5 * um, 0, 6 * um}
		cfg.Species = []config.SpeciesConfig{sp}
		checkGaussDrift(t, mustBuild(t, cfg))
	}
}

func TestPulseSeedIsDivergenceFree(t *testing.T) {
	for _, geom := range []string{"3d", "xz", "rz"} {
		cfg := smallConfig(geom)
		cfg.Pulse = &config.PulseConfig{Amplitude: 1e9, Center: [3]float64{6 * um, 6 * um, 6 * um}, Width: 2 * um}
		s := mustBuild(t, cfg)
		st := s.State()
		if st.E[1].MaxAbsValid(0) < 0.5e9 {
			t.Errorf("%s: transverse component not seeded, max %g", geom, st.E[1].MaxAbsValid(0))
		}
		if st.E[0].MaxAbsValid(0) != 0 || st.E[2].MaxAbsValid(0) != 0 {
			t.Errorf("%s: pulse leaked into the in-plane components", geom)
		}
		for n, d := range gaussDefect(s) {
			if d != 0 {
				t.Fatalf("%s: seeded pulse has div E = %g at node %d", geom, d, n)
			}
		}
	}
}

func TestPMLAbsorbsPulse(t *testing.T) {
	base := smallConfig("xz")
	base.Cells = [3]int{40, 1, 40}
	base.Pulse = &config.PulseConfig{Amplitude: 1e9, Center: [3]float64{20 * um, 0, 20 * um}, Width: 3 * um}

	closed := mustBuild(t, base)
	withPML := base.Clone()
	withPML.PML = &config.PMLConfig{Thickness: 8}
	open := mustBuild(t, withPML)

	initial := fieldEnergy(open.State())
	ctx := context.Background()
	const steps = 120
	if _, err := closed.Run(ctx, steps); err != nil {
		t.Fatalf("closed run: %v", err)
	}
	if _, err := open.Run(ctx, steps); err != nil {
		t.Fatalf("pml run: %v", err)
	}

	eClosed, eOpen := fieldEnergy(closed.State()), fieldEnergy(open.State())
	if eClosed < 0.3*initial {
		t.Errorf("closed box lost too much energy: %g of %g", eClosed, initial)
	}
	if eOpen > 0.2*eClosed {
		t.Errorf("pml kept %g against %g in the closed box", eOpen, eClosed)
	}
}

func TestConductorDampsFields(t *testing.T) {
	cfg := config.GetPreset("conductor")
	cfg.Cells = [3]int{12, 12, 12}
	cfg.Pulse.Center = [3]float64{6 * um, 6 * um, 6 * um}
	vacuum := cfg.Clone()
	vacuum.Medium = nil

	lossy, free := mustBuild(t, cfg), mustBuild(t, vacuum)
	ctx := context.Background()
	if _, err := lossy.Run(ctx, 20); err != nil {
		t.Fatal(err)
	}
	if _, err := free.Run(ctx, 20); err != nil {
		t.Fatal(err)
	}
	if el, ef := fieldEnergy(lossy.State()), fieldEnergy(free.State()); !(el < ef) {
		t.Errorf("conductor energy %g not below vacuum %g", el, ef)
	}
}

func TestCylindricalRingSteps(t *testing.T) {
	cfg := smallConfig("rz")
	cfg.Modes = 2
	sp := beam(400, [3]float64{0, 0, 0.3})
	sp.Center = [3]float64{2 * um, 0, 6 * um}
	cfg.Species = []config.SpeciesConfig{sp}
	s := mustBuild(t, cfg)

	if _, err := s.Run(context.Background(), 4); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	st := s.State()
	if st.E[0].NComp() != grid.ModeComponents(2) {
		t.Fatalf("expected %d components, got %d", grid.ModeComponents(2), st.E[0].NComp())
	}
	if st.J[2].MaxAbsValid(1) == 0 {
		t.Error("off-axis beam should drive mode 1")
	}
	if st.Rho.MaxAbsValid(0) == 0 {
		t.Error("expected deposited charge")
	}
}

func TestStepErrors(t *testing.T) {
	t.Run("non-finite field", func(t *testing.T) {
		s := mustBuild(t, smallConfig("3d"))
		s.State().E[0].Set(4, 4, 4, 0, math.NaN())
		err := s.Step(context.Background())
		var se *StepError
		if !errors.As(err, &se) || !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected StepError wrapping ErrInvalidState, got %v", err)
		}
		if se.Step != 1 {
			t.Errorf("expected step 1, got %d", se.Step)
		}
	})

	t.Run("malformed batch", func(t *testing.T) {
		cfg := smallConfig("3d")
		cfg.Species = []config.SpeciesConfig{beam(10, [3]float64{})}
		s := mustBuild(t, cfg)
		b := &s.State().Species[0].Batch
		b.IonLevel = []int32{1}
		err := s.Step(context.Background())
		if !errors.Is(err, deposit.ErrBatch) {
			t.Fatalf("expected ErrBatch, got %v", err)
		}
	})
}

func TestEnsembleRun(t *testing.T) {
	a := mustBuild(t, smallConfig("3d"))
	b := mustBuild(t, smallConfig("xz"))
	a.AddMetric(&countingMetric{})
	b.AddMetric(&countingMetric{})

	results, err := NewEnsemble(a, b).Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 3 {
			t.Errorf("run %d: expected 3 steps, got %d", i, r.StepsTaken)
		}
	}
}

func TestEnsembleRunEachIsolatesFailures(t *testing.T) {
	good := mustBuild(t, smallConfig("xz"))
	bad := mustBuild(t, smallConfig("3d"))
	bad.State().E[0].Set(4, 4, 4, 0, math.NaN())

	results, errs := NewEnsemble(good, bad).RunEach(context.Background(), func(i int) int { return 2 + i })
	if errs[0] != nil {
		t.Fatalf("healthy run failed: %v", errs[0])
	}
	if results[0].StepsTaken != 2 {
		t.Errorf("expected 2 steps, got %d", results[0].StepsTaken)
	}
	if !errors.Is(errs[1], ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", errs[1])
	}
	if results[1] == nil || results[1].StepsTaken != 0 {
		t.Errorf("failed run should keep a partial result, got %+v", results[1])
	}
}

func TestEnsembleRunEachReportsEveryFailure(t *testing.T) {
	var sims []*Simulator
	for i := 0; i < 3; i++ {
		s := mustBuild(t, smallConfig("xz"))
		if i != 1 {
			s.State().E[2].Set(3, 0, 3, 0, math.Inf(1))
		}
		sims = append(sims, s)
	}

	_, errs := NewEnsemble(sims...).RunEach(context.Background(), func(int) int { return 3 })
	for i, err := range errs {
		if i == 1 {
			if err != nil {
				t.Errorf("healthy run %d failed: %v", i, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("run %d: expected ErrInvalidState, got %v", i, err)
		}
	}
}
