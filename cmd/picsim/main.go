package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/picsim/internal/analysis"
	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/metrics"
	"github.com/san-kum/picsim/internal/parallel"
	"github.com/san-kum/picsim/internal/sim"
	"github.com/san-kum/picsim/internal/storage"
	"github.com/san-kum/picsim/internal/tui"
	"github.com/san-kum/picsim/internal/viz"
)

var (
	dataDir       string
	configFile    string
	preset        string
	steps         int
	order         int
	deposition    string
	threads       int
	diagEvery     int
	noSave        bool
	jsonOut       bool
	watch         bool
	frameRate     int
	plotMetric    string
	analyzeMetric string
	benchPreset   string
	benchSteps    int
	benchThreads  int
	posAxis       int
	momAxis       int
	speciesName   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "picsim",
		Short:        "electromagnetic particle-in-cell field and deposition core",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".picsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save its history",
		RunE:  runSimulation,
	}
	addSetupFlags(runCmd)
	runCmd.Flags().IntVar(&diagEvery, "diag-every", 0, "metric sampling interval in steps")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "write the run as JSON to stdout")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the particles while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate for --watch")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with the interactive terminal view",
		RunE:  runLive,
	}
	addSetupFlags(liveCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase",
		Short: "run and print a species' phase space",
		RunE:  phasePlot,
	}
	addSetupFlags(phaseCmd)
	phaseCmd.Flags().StringVar(&speciesName, "species", "", "species name (default: first)")
	phaseCmd.Flags().IntVar(&posAxis, "x-axis", 2, "position axis 0-2")
	phaseCmd.Flags().IntVar(&momAxis, "u-axis", 2, "momentum axis 0-2")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "", "plot only this metric")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and power spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "field_energy", "metric to analyze")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "charge-conservation and absorbing-boundary self-checks",
		RunE:  runChecks,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time steps per second across orders and deposition strategies",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&benchPreset, "preset", "beam3d", "preset to benchmark")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "steps per configuration")
	benchCmd.Flags().IntVar(&benchThreads, "threads", 0, "worker count, 0 for all cores")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted batch of variants and sweeps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&scenarioMetric, "metric", "gauss_residual", "metric to rank cases by")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run and write SVG images of the final particles and fields",
		RunE:  snapshot,
	}
	addSetupFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotDir, "out", "o", "snapshot", "output directory")
	snapshotCmd.Flags().Float64Var(&snapshotScale, "scale", 4, "pixels per dot")
	snapshotCmd.Flags().StringVar(&snapshotTheme, "theme", "plasma", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	rootCmd.AddCommand(runCmd, liveCmd, phaseCmd, presetsCmd, listCmd, plotCmd, analyzeCmd, exportCmd, checkCmd, benchCmd, scenarioCmd, snapshotCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration (see 'picsim presets')")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (.yaml, .yml or .toml)")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (overrides config)")
	cmd.Flags().IntVar(&order, "order", 0, "shape order 0-3 (overrides config)")
	cmd.Flags().StringVar(&deposition, "deposition", "", "esirkepov or direct (overrides config)")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker count, 0 for all cores (overrides config)")
}

// loadConfig resolves the configuration: defaults, then the preset, then
// the config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("order") {
		cfg.Order = order
	}
	if flags.Changed("deposition") {
		cfg.Deposition = deposition
	}
	if flags.Changed("threads") {
		cfg.Threads = threads
	}
	if flags.Lookup("diag-every") != nil && flags.Changed("diag-every") {
		cfg.DiagEvery = diagEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parallel.SetBackend(parallel.Select(cfg.Threads))
	return cfg, nil
}

func build(cfg *config.Config) (*sim.Simulator, error) {
	s, err := sim.Build(cfg)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}

	if watch {
		r := tui.NewLiveRenderer(os.Stdout, cfg.Name, s.Extent(), cfg.Steps, frameRate)
		r.Start()
		defer r.Stop()
		s.AddObserver(r)
	}

	if !jsonOut {
		fmt.Printf("running %s (%s, %s order %d, %d steps, %s)...\n",
			cfg.Name, cfg.Geometry, cfg.Deposition, cfg.Order, cfg.Steps, parallel.GetBackend().Name())
	}
	start := time.Now()
	result, runErr := s.Run(cmd.Context(), cfg.Steps)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	if jsonOut {
		if err := storage.ExportJSON(os.Stdout, cfg, s.Dt(), result); err != nil {
			return err
		}
		return runErr
	}

	if !noSave {
		st := storage.New(dataDir)
		runID, err := st.Save(cfg, storage.RunInfo{Dt: s.Dt(), Particles: s.NumParticles(), Absorbed: s.Absorbed()}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, elapsed)
	fmt.Printf("dt: %.4g s  particles: %d  absorbed: %d\n", s.Dt(), s.NumParticles(), s.Absorbed())
	fmt.Println("\nmetrics:")
	fmt.Print(viz.MetricsTable(result.Metrics))

	var stepErr *sim.StepError
	if errors.As(runErr, &stepErr) {
		fmt.Fprintln(os.Stderr, viz.StatusFailed.Render(stepErr.Error()))
	}
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := build(cfg)
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), s, cfg.Name, cfg.Steps)
}

func phasePlot(cmd *cobra.Command, args []string) error {
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

	species := s.State().Species
	if len(species) == 0 {
		return fmt.Errorf("%s has no particles", cfg.Name)
	}
	sp := species[0]
	if speciesName != "" {
		sp = nil
		for _, cand := range species {
			if cand.Name == speciesName {
				sp = cand
			}
		}
		if sp == nil {
			return fmt.Errorf("unknown species: %s", speciesName)
		}
	}

	portrait := analysis.PhaseSpace(sp, posAxis, momAxis)
	if portrait == nil {
		return fmt.Errorf("axes must be 0-2, got %d and %d", posAxis, momAxis)
	}
	minX, maxX, minY, maxY := portrait.Bounds()
	axes := "xyz"
	fmt.Printf("%s after %d steps: %s [%.3g, %.3g] m vs u%s/c [%.3g, %.3g]\n\n",
		sp.Name, s.State().Step, axes[posAxis:posAxis+1], minX, maxX, axes[momAxis:momAxis+1], minY, maxY)
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 72, 24))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGEOMETRY\tCELLS\tDEPOSITION\tORDER\tSTEPS\tPARTICLES\tPML\tMEDIUM")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		n := 0
		for _, sp := range cfg.Species {
			n += sp.Count
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%dx%d\t%s\t%d\t%d\t%d\t%t\t%t\n",
			name, cfg.Geometry, cfg.Cells[0], cfg.Cells[1], cfg.Cells[2],
			cfg.Deposition, cfg.Order, cfg.Steps, n, cfg.PML != nil, cfg.Medium != nil)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGEOM\tDEPOSITION\tORDER\tSTEPS\tDT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%.3gs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Geometry,
			run.Deposition,
			run.Order,
			run.Steps,
			run.Dt,
		)
	}
	return w.Flush()
}

func sortedNames(history map[string][]float64) []string {
	names := make([]string, 0, len(history))
	for name := range history {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d over %.4g s\n\n", len(times), times[len(times)-1]-times[0])

	names := sortedNames(history)
	if plotMetric != "" {
		if _, ok := history[plotMetric]; !ok {
			return fmt.Errorf("unknown metric: %s (available: %s)", plotMetric, strings.Join(names, ", "))
		}
		names = []string{plotMetric}
	}
	for _, name := range names {
		fmt.Println(viz.HistoryPlot(name, history[name], 80, 10))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	data, ok := history[analyzeMetric]
	if !ok {
		return fmt.Errorf("unknown metric: %s (available: %s)", analyzeMetric, strings.Join(sortedNames(history), ", "))
	}
	if len(data) < 4 {
		return fmt.Errorf("need at least 4 samples, got %d", len(data))
	}

	fmt.Printf("analysis: %s (%s)\n\n", meta.ID, analyzeMetric)
	sum := analysis.Summarize(data)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tMEAN\tSTDDEV\tMIN\tMAX\tDRIFT")
	fmt.Fprintf(w, "%d\t%.6g\t%.3g\t%.6g\t%.6g\t%.3g\n", sum.N, sum.Mean, sum.StdDev, sum.Min, sum.Max, sum.Drift)
	if err := w.Flush(); err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(data)
	fmt.Println()
	fmt.Println(viz.HistoryPlot("power spectrum ("+analyzeMetric+")", ps, 80, 15))
	fmt.Println()

	sampleDt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	freq := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.4g Hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.4g s\n", 1/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
