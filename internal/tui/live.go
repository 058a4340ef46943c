package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/picsim/internal/sim"
	"github.com/san-kum/picsim/internal/viz"
)

const (
	width       = 70
	height      = 16
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a sim.Observer that redraws the particle projection
// after each step, at most frameRate times a second. A non-positive
// frameRate draws every step.
type LiveRenderer struct {
	out       io.Writer
	name      string
	extent    [3]float64
	total     int
	frameRate int
	lastFrame time.Time
}

func NewLiveRenderer(out io.Writer, name string, extent [3]float64, total, frameRate int) *LiveRenderer {
	return &LiveRenderer{
		out:       out,
		name:      name,
		extent:    extent,
		total:     total,
		frameRate: frameRate,
	}
}

func (r *LiveRenderer) OnStep(st *sim.State) {
	if r.frameRate > 0 && time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	fmt.Fprint(r.out, r.frame(st))
}

func (r *LiveRenderer) frame(st *sim.State) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  step %d  t=%.4g s\n", r.name, st.Step, st.Time)
	b.WriteString("  " + strings.Repeat("─", width) + "\n")
	for _, row := range strings.Split(strings.TrimSuffix(viz.ParticleView(st, r.extent, width, height).String(), "\n"), "\n") {
		b.WriteString("  " + row + "\n")
	}
	b.WriteString("  " + strings.Repeat("─", width) + "\n")

	n := 0
	for _, sp := range st.Species {
		n += sp.Batch.Len()
		fmt.Fprintf(&b, "  %s=%d", sp.Name, sp.Batch.Len())
	}
	fmt.Fprintf(&b, "  total=%d  |Ey|max=%.3g  |Ez|max=%.3g\n", n, st.E[1].MaxAbsValid(0), st.E[2].MaxAbsValid(0))
	if r.total > 0 {
		b.WriteString("  " + viz.ProgressBar(float64(st.Step)/float64(r.total), width/2) + "\n")
	}
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
