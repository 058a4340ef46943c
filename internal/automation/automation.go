package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/metrics"
	"github.com/san-kum/picsim/internal/sim"
)

var ErrScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted batch of runs: a base configuration, explicit
// variants and a sweep over parameter values, each repeated Trials times
// with shifted species seeds.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Preset      string      `yaml:"preset"`
	Config      string      `yaml:"config"`
	Steps       int         `yaml:"steps"`
	Trials      int         `yaml:"trials"`
	Runs        []Variant   `yaml:"runs"`
	Sweep       []SweepAxis `yaml:"sweep"`
}

// Variant overrides parameters of the base configuration by name; see
// Apply for the accepted names.
type Variant struct {
	Label  string            `yaml:"label"`
	Params map[string]string `yaml:"params"`
}

type SweepAxis struct {
	Param  string   `yaml:"param"`
	Values []string `yaml:"values"`
}

// Case is one expanded run.
type Case struct {
	Label  string
	Trial  int
	Config *config.Config
}

type CaseResult struct {
	Case
	Result *sim.Result
	Err    error
}

// Stable reports whether the run finished without a step error.
func (r CaseResult) Stable() bool { return r.Err == nil }

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrScenario, path, err)
	}
	return &sc, nil
}

// Apply sets one named parameter on cfg from its string form.
func Apply(cfg *config.Config, param, value string) error {
	atoi := func() (int, error) { return strconv.Atoi(value) }
	atof := func() (float64, error) { return strconv.ParseFloat(value, 64) }
	var err error
	switch param {
	case "order":
		cfg.Order, err = atoi()
	case "modes":
		cfg.Modes, err = atoi()
	case "threads":
		cfg.Threads, err = atoi()
	case "steps":
		cfg.Steps, err = atoi()
	case "cfl":
		cfg.CFL, err = atof()
	case "dt":
		cfg.Dt, err = atof()
	case "deposition":
		cfg.Deposition = value
	case "algorithm":
		cfg.Algorithm = value
	case "geometry":
		cfg.Geometry = value
	case "div_clean":
		cfg.DivClean, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrScenario, param)
	}
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %w", ErrScenario, param, value, err)
	}
	return nil
}

func (sc *Scenario) base() (*config.Config, error) {
	switch {
	case sc.Config != "":
		return config.Load(sc.Config)
	case sc.Preset != "":
		if cfg := config.GetPreset(sc.Preset); cfg != nil {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: unknown preset %q", ErrScenario, sc.Preset)
	}
	return config.DefaultConfig(), nil
}

// Expand returns every case of the scenario, validated. Without variants
// or a sweep the base configuration is the only case.
func (sc *Scenario) Expand() ([]Case, error) {
	base, err := sc.base()
	if err != nil {
		return nil, err
	}
	if sc.Steps > 0 {
		base.Steps = sc.Steps
	}

	var cases []Case
	for _, v := range sc.Runs {
		cfg := base.Clone()
		keys := make([]string, 0, len(v.Params))
		for k := range v.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := Apply(cfg, k, v.Params[k]); err != nil {
				return nil, err
			}
		}
		label := v.Label
		if label == "" {
			label = labelFor(keys, v.Params)
		}
		cases = append(cases, Case{Label: label, Config: cfg})
	}
	if len(sc.Sweep) > 0 {
		swept, err := sc.sweep(base, 0, map[string]string{})
		if err != nil {
			return nil, err
		}
		cases = append(cases, swept...)
	}
	if len(cases) == 0 {
		cases = []Case{{Label: "base", Config: base}}
	}

	trials := max(sc.Trials, 1)
	out := make([]Case, 0, len(cases)*trials)
	for _, c := range cases {
		for trial := 0; trial < trials; trial++ {
			cfg := c.Config.Clone()
			for i := range cfg.Species {
				cfg.Species[i].Seed += uint64(trial)
			}
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("case %s: %w", c.Label, err)
			}
			out = append(out, Case{Label: c.Label, Trial: trial, Config: cfg})
		}
	}
	return out, nil
}

// sweep walks the cartesian product of the sweep axes depth first.
func (sc *Scenario) sweep(base *config.Config, depth int, current map[string]string) ([]Case, error) {
	if depth == len(sc.Sweep) {
		cfg := base.Clone()
		keys := make([]string, 0, len(current))
		for _, axis := range sc.Sweep {
			keys = append(keys, axis.Param)
			if err := Apply(cfg, axis.Param, current[axis.Param]); err != nil {
				return nil, err
			}
		}
		return []Case{{Label: labelFor(keys, current), Config: cfg}}, nil
	}

	axis := sc.Sweep[depth]
	if len(axis.Values) == 0 {
		return nil, fmt.Errorf("%w: sweep over %q has no values", ErrScenario, axis.Param)
	}
	var cases []Case
	for _, val := range axis.Values {
		next := make(map[string]string, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Param] = val
		sub, err := sc.sweep(base, depth+1, next)
		if err != nil {
			return nil, err
		}
		cases = append(cases, sub...)
	}
	return cases, nil
}

func labelFor(keys []string, params map[string]string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return strings.Join(parts, ",")
}

// Run builds every case with the default metrics and advances them side
// by side through a sim.Ensemble. A step error marks that case unstable
// without failing the others; build errors abort the scenario.
func Run(ctx context.Context, cases []Case) ([]CaseResult, error) {
	sims := make([]*sim.Simulator, len(cases))
	for i, c := range cases {
		s, err := sim.Build(c.Config)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Label, err)
		}
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
		sims[i] = s
	}

	results := make([]CaseResult, len(cases))
	for i, c := range cases {
		results[i].Case = c
	}

	res, errs := sim.NewEnsemble(sims...).RunEach(ctx, func(i int) int { return cases[i].Config.Steps })
	for i := range results {
		results[i].Result = res[i]
		results[i].Err = errs[i]
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Best returns the stable result with the smallest final value of metric,
// or false when no stable result carries it.
func Best(results []CaseResult, metric string) (CaseResult, bool) {
	var best CaseResult
	found := false
	for _, r := range results {
		if !r.Stable() || r.Result == nil {
			continue
		}
		v, ok := r.Result.Metrics[metric]
		if !ok {
			continue
		}
		if !found || v < best.Result.Metrics[metric] {
			best, found = r, true
		}
	}
	return best, found
}
