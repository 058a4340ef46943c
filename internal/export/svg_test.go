package export

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/picsim/internal/analysis"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/viz"
)

func wellFormed(t *testing.T, svg string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("malformed svg: %v\n%s", err, svg)
		}
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(3, 2)
	c.Set(0, 0)
	c.Set(5, 7)
	c.Set(1, 3)

	svg := CanvasToSVG(c, 4, "#ffff00")
	wellFormed(t, svg)
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 dots, got %d", got)
	}
	if !strings.Contains(svg, `width="24" height="32"`) {
		t.Error("unexpected svg size")
	}
	// Dot (5, 7) sits in the bottom-right corner.
	if !strings.Contains(svg, `cx="22.0" cy="30.0"`) {
		t.Errorf("corner dot missing:\n%s", svg)
	}
	if CanvasToSVG(nil, 1, "#fff") != "" {
		t.Error("nil canvas should export nothing")
	}
}

func TestFieldToSVG(t *testing.T) {
	f := grid.YeeLayout(grid.CartesianXZ).NewE(grid.CellBox([3]int{4, 1, 6}), 1, 1)[2]
	f.Set(0, 0, 0, 0, 2)
	f.Set(3, 0, 5, 0, -1)

	svg := FieldToSVG(f, 5, "#ff0000", "#0000ff")
	wellFormed(t, svg)
	if got := strings.Count(svg, "<rect x="); got != 2 {
		t.Errorf("expected 2 cells, got %d", got)
	}
	if !strings.Contains(svg, `fill="#ff0000" fill-opacity="1.000"`) {
		t.Error("peak cell should be opaque")
	}
	if !strings.Contains(svg, `fill="#0000ff" fill-opacity="0.500"`) {
		t.Error("negative cell should be half transparent")
	}
}

func TestPhaseToSVG(t *testing.T) {
	p := &analysis.PhasePortrait2D{Points: []struct{ X, Y float64 }{{0, 0}, {1, 1}, {0.5, -1}}}
	svg := PhaseToSVG(p, 200, 100, "#00ffff")
	wellFormed(t, svg)
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("expected 3 points, got %d", got)
	}
	if PhaseToSVG(nil, 10, 10, "#fff") != "" {
		t.Error("nil portrait should export nothing")
	}
}
