package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/metrics"
	"github.com/san-kum/picsim/internal/sim"
)

func buildSim(t *testing.T) *sim.Simulator {
	t.Helper()
	cfg := config.GetPreset("beam2d")
	cfg.Species[0].Count = 200
	s, err := sim.Build(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelStepsOnTick(t *testing.T) {
	s := buildSim(t)
	m := NewModel(context.Background(), s, "beam2d", 0)
	if got := len(m.history["field_energy"]); got != 1 {
		t.Fatalf("expected initial sample, got %d", got)
	}

	m = update(t, m, tickMsg{})
	if s.State().Step != 1 {
		t.Errorf("expected step 1, got %d", s.State().Step)
	}
	if got := len(m.history["field_energy"]); got != 2 {
		t.Errorf("expected 2 samples, got %d", got)
	}

	m = update(t, m, key(" "))
	m = update(t, m, tickMsg{})
	if s.State().Step != 1 {
		t.Errorf("paused model stepped to %d", s.State().Step)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view should show paused status")
	}
}

func TestModelStopsAtMaxSteps(t *testing.T) {
	s := buildSim(t)
	m := NewModel(context.Background(), s, "beam2d", 3)
	m = update(t, m, key("+"))
	m = update(t, m, key("+"))
	if m.stepsPerTick != 4 {
		t.Fatalf("stepsPerTick = %d, want 4", m.stepsPerTick)
	}
	m = update(t, m, tickMsg{})
	if s.State().Step != 3 {
		t.Errorf("expected to stop at 3, got %d", s.State().Step)
	}
	if m.running {
		t.Error("model should stop running at max steps")
	}
	m = update(t, m, key("-"))
	if m.stepsPerTick != 2 {
		t.Errorf("stepsPerTick = %d, want 2", m.stepsPerTick)
	}
}

func TestModelViews(t *testing.T) {
	s := buildSim(t)
	m := NewModel(context.Background(), s, "beam2d", 10)
	if !strings.Contains(m.View(), fmt.Sprintf("particles %d", s.NumParticles())) {
		t.Error("particle view should report the particle count")
	}
	m = update(t, m, key("v"))
	m = update(t, m, key("c"))
	if m.view != viewField || m.component != 0 {
		t.Fatalf("view=%d component=%d", m.view, m.component)
	}
	if !strings.Contains(m.View(), "Ex") {
		t.Error("field view should caption the component")
	}
	m = update(t, m, key("?"))
	if !strings.Contains(m.View(), "steps per frame") {
		t.Error("help overlay missing")
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestLiveRendererDrawsEveryStep(t *testing.T) {
	s := buildSim(t)
	var out bytes.Buffer
	r := NewLiveRenderer(&out, "beam2d", s.Extent(), 2, 0)
	s.AddObserver(r)
	if _, err := s.Run(context.Background(), 2); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := strings.Count(out.String(), clearScreen); got != 2 {
		t.Errorf("expected 2 frames, got %d", got)
	}
	if !strings.Contains(out.String(), "step 2") || !strings.Contains(out.String(), "electrons=") {
		t.Errorf("unexpected frame:\n%s", out.String())
	}
}
