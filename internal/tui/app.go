package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/picsim/internal/sim"
	"github.com/san-kum/picsim/internal/viz"
)

const (
	historyCapacity = 400
	maxStepsPerTick = 64
	canvasWidth     = 60
	canvasHeight    = 18
)

type viewMode int

const (
	viewParticles viewMode = iota
	viewField
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea live view: it steps the simulator on every tick
// while running and keeps a bounded history of its metrics.
type Model struct {
	ctx          context.Context
	sim          *sim.Simulator
	name         string
	maxSteps     int
	stepsPerTick int
	running      bool
	view         viewMode
	component    int
	history      map[string][]float64
	err          error
	frame        int
	showHelp     bool
}

// NewModel wraps s; maxSteps of zero runs until quit.
func NewModel(ctx context.Context, s *sim.Simulator, name string, maxSteps int) Model {
	m := Model{
		ctx:          ctx,
		sim:          s,
		name:         name,
		maxSteps:     maxSteps,
		stepsPerTick: 1,
		running:      true,
		component:    2,
		history:      make(map[string][]float64),
	}
	m.observe()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "v":
			m.view = (m.view + 1) % 2
		case "c":
			m.component = (m.component + 1) % 3
		case "+", "=":
			m.stepsPerTick = min(2*m.stepsPerTick, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "t":
			viz.NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		m.frame++
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) done() bool {
	return m.err != nil || (m.maxSteps > 0 && m.sim.State().Step >= m.maxSteps)
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick && !m.done(); i++ {
		if err := m.sim.Step(m.ctx); err != nil {
			m.err = err
		}
	}
	if m.done() {
		m.running = false
	}
	m.observe()
}

func (m *Model) observe() {
	st := m.sim.State()
	for _, metric := range m.sim.Metrics() {
		metric.Observe(st)
		h := append(m.history[metric.Name()], metric.Value())
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[metric.Name()] = h
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return viz.StatusFailed.Render("FAILED")
	case m.maxSteps > 0 && m.sim.State().Step >= m.maxSteps:
		return viz.StatusPaused.Render("DONE")
	case !m.running:
		return viz.StatusPaused.Render("PAUSED")
	}
	return viz.StatusRunning.Render(viz.AnimatedSpinner(m.frame) + " RUNNING")
}

func (m Model) canvas() string {
	st := m.sim.State()
	if m.view == viewField {
		theme := viz.CurrentTheme
		out, peak := viz.FieldMap(st.E[m.component], canvasWidth, canvasHeight)
		caption := fmt.Sprintf("E%s  max %.3g V/m", "xyz"[m.component:m.component+1], peak)
		return lipgloss.NewStyle().Foreground(theme.Positive).Render(out) + viz.Subtle.Render(caption)
	}
	c := viz.ParticleView(st, m.sim.Extent(), canvasWidth, canvasHeight)
	return lipgloss.NewStyle().Foreground(viz.CurrentTheme.Particle).Render(c.String()) +
		viz.Subtle.Render(fmt.Sprintf("particles %d  absorbed %d", m.sim.NumParticles(), m.sim.Absorbed()))
}

func (m Model) View() string {
	st := m.sim.State()
	theme := viz.CurrentTheme

	var s strings.Builder
	s.WriteString(viz.GradientText(strings.ToUpper(m.name), theme.Primary, theme.Positive) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(viz.MetricLabel.Render(label) + viz.MetricValue.Render(value) + "\n")
	}
	row("step", fmt.Sprintf("%d", st.Step))
	row("time", fmt.Sprintf("%.4g s", st.Time))
	row("dt", fmt.Sprintf("%.3g s", m.sim.Dt()))
	row("steps/frame", fmt.Sprintf("%d", m.stepsPerTick))
	if m.maxSteps > 0 {
		s.WriteString(viz.ProgressBar(float64(st.Step)/float64(m.maxSteps), 30) + "\n")
	}
	s.WriteString("\n")

	for _, metric := range m.sim.Metrics() {
		h := m.history[metric.Name()]
		if len(h) == 0 {
			continue
		}
		row(metric.Name(), fmt.Sprintf("%.4g", h[len(h)-1]))
	}
	if graph := viz.HistoryPlot("field energy", m.history["field_energy"], 30, 4); graph != "" {
		s.WriteString(graphStyle.Render(graph) + "\n")
	}
	if m.err != nil {
		s.WriteString(viz.StatusFailed.Render(m.err.Error()) + "\n")
	}
	s.WriteString(viz.KeyHint.Render("\nSP:pause V:view C:component +/-:speed\nT:theme ?:help Q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas()), statsStyle.Render(s.String()))
	if m.showHelp {
		help := viz.BoxWithTitle("keys", strings.Join([]string{
			"space  pause / resume",
			"v      particles / field view",
			"c      cycle E component",
			"+ -    steps per frame",
			"t      cycle theme",
			"q      quit",
		}, "\n"), 40)
		return help + "\n" + main
	}
	return main
}

// Run shows the live view until the user quits or ctx is done.
func Run(ctx context.Context, s *sim.Simulator, name string, maxSteps int) error {
	p := tea.NewProgram(NewModel(ctx, s, name, maxSteps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
