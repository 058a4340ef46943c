package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// MetricsTable lists metrics by name, one per line.
func MetricsTable(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(MetricLabel.Render(name))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%.6g", metrics[name])))
		b.WriteByte('\n')
	}
	return b.String()
}

// HistoryPlot draws one metric history with asciigraph. Histories shorter
// than two samples plot as an empty string.
func HistoryPlot(caption string, data []float64, width, height int) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
