package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/picsim/internal/analysis"
	"github.com/san-kum/picsim/internal/automation"
	"github.com/san-kum/picsim/internal/export"
	"github.com/san-kum/picsim/internal/viz"
)

var (
	scenarioMetric string
	snapshotDir    string
	snapshotScale  float64
	snapshotTheme  string
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cases, err := sc.Expand()
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s: %d cases\n", sc.Name, len(cases))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	results, err := automation.Run(cmd.Context(), cases)
	if err != nil && results == nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CASE\tTRIAL\tSTEPS\tSTATUS\t%s\n", scenarioMetric)
	for _, r := range results {
		status, value := "ok", "-"
		if !r.Stable() {
			status = "failed"
		}
		steps := 0
		if r.Result != nil {
			steps = r.Result.StepsTaken
			if v, ok := r.Result.Metrics[scenarioMetric]; ok {
				value = fmt.Sprintf("%.6g", v)
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", r.Label, r.Trial, steps, status, value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := automation.Best(results, scenarioMetric); ok {
		fmt.Printf("\nbest %s: %s (trial %d) = %.6g\n",
			scenarioMetric, best.Label, best.Trial, best.Result.Metrics[scenarioMetric])
	}
	return err
}

// snapshot runs a configuration and writes SVG images of the final state:
// the particle view, each E component and the first species' phase space.
func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}
	if _, err := s.Run(cmd.Context(), cfg.Steps); err != nil {
		return err
	}
	if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
		return err
	}

	theme := viz.GetTheme(snapshotTheme)
	files := map[string]string{
		"particles.svg": export.CanvasToSVG(viz.ParticleView(s.State(), s.Extent(), 60, 24), snapshotScale, string(theme.Particle)),
	}
	for c, f := range s.State().E {
		name := fmt.Sprintf("e%c.svg", "xyz"[c])
		files[name] = export.FieldToSVG(f, 2*snapshotScale, string(theme.Positive), string(theme.Negative))
	}
	if species := s.State().Species; len(species) > 0 {
		if p := analysis.PhaseSpace(species[0], 2, 2); p != nil && len(p.Points) > 0 {
			files["phase.svg"] = export.PhaseToSVG(p, 640, 400, string(theme.Primary))
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(snapshotDir, name)
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}
