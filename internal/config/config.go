package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/fdtd"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/shape"
)

var (
	ErrInvalid = errors.New("config: invalid")
	ErrFormat  = errors.New("config: unknown file format")
)

const (
	DefaultCells    = 32
	DefaultCellSize = 1e-6
	DefaultCFL      = 0.95
	DefaultSteps    = 200
	DefaultOrder    = 1
	DefaultModes    = 1
)

type Config struct {
	Name     string     `yaml:"name" toml:"name"`
	Geometry string     `yaml:"geometry" toml:"geometry"`
	Cells    [3]int     `yaml:"cells" toml:"cells"`
	CellSize [3]float64 `yaml:"cell_size" toml:"cell_size"`
	// Dt is the time step; zero selects CFL times the Courant limit.
	Dt         float64 `yaml:"dt" toml:"dt"`
	CFL        float64 `yaml:"cfl" toml:"cfl"`
	Steps      int     `yaml:"steps" toml:"steps"`
	Algorithm  string  `yaml:"algorithm" toml:"algorithm"`
	Deposition string  `yaml:"deposition" toml:"deposition"`
	Order      int     `yaml:"order" toml:"order"`
	Modes      int     `yaml:"modes" toml:"modes"`
	DivClean   bool    `yaml:"div_clean" toml:"div_clean"`
	Threads    int     `yaml:"threads" toml:"threads"`
	// DiagEvery is the number of steps between metric samples.
	DiagEvery int `yaml:"diag_every" toml:"diag_every"`

	PML     *PMLConfig      `yaml:"pml,omitempty" toml:"pml,omitempty"`
	Medium  *MediumConfig   `yaml:"medium,omitempty" toml:"medium,omitempty"`
	Pulse   *PulseConfig    `yaml:"pulse,omitempty" toml:"pulse,omitempty"`
	Species []SpeciesConfig `yaml:"species" toml:"species"`
}

type PMLConfig struct {
	Thickness int     `yaml:"thickness" toml:"thickness"`
	Strength  float64 `yaml:"strength" toml:"strength"`
	Order     int     `yaml:"order" toml:"order"`
}

type MediumConfig struct {
	Sigma  float64 `yaml:"sigma" toml:"sigma"`
	EpsR   float64 `yaml:"eps_r" toml:"eps_r"`
	MuR    float64 `yaml:"mu_r" toml:"mu_r"`
	Method string  `yaml:"method" toml:"method"`
}

// PulseConfig seeds the initial fields with a transverse Ey pulse (Etheta
// in rz) that is Gaussian in x and z and uniform along y.
type PulseConfig struct {
	Amplitude float64    `yaml:"amplitude" toml:"amplitude"`
	Center    [3]float64 `yaml:"center" toml:"center"`
	Width     float64    `yaml:"width" toml:"width"`
}

type SpeciesConfig struct {
	Name   string  `yaml:"name" toml:"name"`
	Charge float64 `yaml:"charge" toml:"charge"`
	Mass   float64 `yaml:"mass" toml:"mass"`
	Count  int     `yaml:"count" toml:"count"`
	Weight float64 `yaml:"weight" toml:"weight"`
	// Center and Spread are Gaussian position parameters [m]; in rz
	// geometry they are Cartesian.
	Center [3]float64 `yaml:"center" toml:"center"`
	Spread [3]float64 `yaml:"spread" toml:"spread"`
	// Momentum is gamma*v/c.
	Momentum [3]float64 `yaml:"momentum" toml:"momentum"`
	Seed     uint64     `yaml:"seed" toml:"seed"`
	IonLevel int32      `yaml:"ion_level" toml:"ion_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "vacuum",
		Geometry:   "3d",
		Cells:      [3]int{DefaultCells, DefaultCells, DefaultCells},
		CellSize:   [3]float64{DefaultCellSize, DefaultCellSize, DefaultCellSize},
		CFL:        DefaultCFL,
		Steps:      DefaultSteps,
		Algorithm:  "yee",
		Deposition: "esirkepov",
		Order:      DefaultOrder,
		Modes:      DefaultModes,
		DiagEvery:  1,
	}
}

// Load reads a yaml or toml file over the defaults. The format follows
// the extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		data = out
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		return fmt.Errorf("%w: %s", ErrFormat, path)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	if c.PML != nil {
		p := *c.PML
		out.PML = &p
	}
	if c.Medium != nil {
		m := *c.Medium
		out.Medium = &m
	}
	if c.Pulse != nil {
		p := *c.Pulse
		out.Pulse = &p
	}
	out.Species = append([]SpeciesConfig(nil), c.Species...)
	return &out
}

func (c *Config) GeometryKind() (grid.Geometry, error) { return grid.ParseGeometry(c.Geometry) }

// Validate checks the configuration without building anything.
func (c *Config) Validate() error {
	g, err := c.GeometryKind()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	alg, err := fdtd.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	strategy, err := deposit.ParseStrategy(c.Deposition)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := shape.Validate(c.Order); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for a := 0; a < 3; a++ {
		if !g.Active(a) {
			continue
		}
		if c.Cells[a] < 1 {
			return fmt.Errorf("%w: cells[%d] = %d", ErrInvalid, a, c.Cells[a])
		}
		if !(c.CellSize[a] > 0) {
			return fmt.Errorf("%w: cell_size[%d] = %g", ErrInvalid, a, c.CellSize[a])
		}
	}
	if c.Steps < 0 || c.Threads < 0 || c.DiagEvery < 0 {
		return fmt.Errorf("%w: steps %d threads %d diag_every %d", ErrInvalid, c.Steps, c.Threads, c.DiagEvery)
	}
	if g == grid.Cylindrical && c.Modes < 1 {
		return fmt.Errorf("%w: rz needs at least one mode, got %d", ErrInvalid, c.Modes)
	}
	if c.Dt < 0 || (c.Dt == 0 && !(c.CFL > 0)) {
		return fmt.Errorf("%w: need dt > 0 or cfl > 0", ErrInvalid)
	}
	if c.Dt == 0 && c.CFL > 1 {
		return fmt.Errorf("%w: cfl %g above 1", ErrInvalid, c.CFL)
	}
	if limit := c.CourantLimit(); c.Dt > limit*(1+1e-12) {
		return fmt.Errorf("%w: dt %g above the courant limit %g", ErrInvalid, c.Dt, limit)
	}
	if g == grid.Cylindrical {
		if alg == fdtd.Nodal {
			return fmt.Errorf("%w: nodal algorithm in rz geometry", ErrInvalid)
		}
		if c.PML != nil {
			return fmt.Errorf("%w: pml in rz geometry", ErrInvalid)
		}
		if c.Medium != nil {
			return fmt.Errorf("%w: medium in rz geometry", ErrInvalid)
		}
	}
	if c.PML != nil {
		if c.Medium != nil {
			return fmt.Errorf("%w: pml and medium cannot be combined", ErrInvalid)
		}
		if alg != fdtd.Yee {
			return fmt.Errorf("%w: pml needs the yee algorithm", ErrInvalid)
		}
		if c.PML.Thickness < 1 {
			return fmt.Errorf("%w: pml thickness %d", ErrInvalid, c.PML.Thickness)
		}
		for a := 0; a < 3; a++ {
			if g.Active(a) && 2*c.PML.Thickness >= c.Cells[a] {
				return fmt.Errorf("%w: pml thickness %d leaves no interior along axis %d", ErrInvalid, c.PML.Thickness, a)
			}
		}
	}
	if m := c.Medium; m != nil {
		if _, err := fdtd.ParseMethod(m.Method); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		if m.Sigma < 0 || !(m.EpsR > 0) || !(m.MuR > 0) {
			return fmt.Errorf("%w: medium sigma %g eps_r %g mu_r %g", ErrInvalid, m.Sigma, m.EpsR, m.MuR)
		}
	}
	if strategy == deposit.Esirkepov && alg == fdtd.Nodal {
		return fmt.Errorf("%w: esirkepov deposition needs the yee algorithm", ErrInvalid)
	}
	for i, s := range c.Species {
		if s.Count < 0 || s.Mass <= 0 || s.Weight < 0 {
			return fmt.Errorf("%w: species %d (%s): count %d mass %g weight %g", ErrInvalid, i, s.Name, s.Count, s.Mass, s.Weight)
		}
		if u := math.Sqrt(s.Momentum[0]*s.Momentum[0] + s.Momentum[1]*s.Momentum[1] + s.Momentum[2]*s.Momentum[2]); math.IsNaN(u) || math.IsInf(u, 0) {
			return fmt.Errorf("%w: species %d (%s): momentum %v", ErrInvalid, i, s.Name, s.Momentum)
		}
	}
	return nil
}

// multimodeAlpha widens the radial term of the cylindrical Courant limit
// for 2 to 7 azimuthal modes.
var multimodeAlpha = [...]float64{0.2105, 1.0, 3.5234, 8.5104, 15.5059, 24.5037}

// CourantLimit is the largest stable time step of the Yee scheme on the
// configured grid.
func (c *Config) CourantLimit() float64 {
	g, err := c.GeometryKind()
	if err != nil {
		return 0
	}
	sum := 0.0
	for a := 0; a < 3; a++ {
		if g.Active(a) && c.CellSize[a] > 0 {
			sum += 1 / (c.CellSize[a] * c.CellSize[a])
		}
	}
	if g == grid.Cylindrical && c.Modes > 1 {
		var alpha float64
		if c.Modes-2 < len(multimodeAlpha) {
			alpha = multimodeAlpha[c.Modes-2]
		} else {
			alpha = float64((c.Modes-2)*(c.Modes-2)) - 0.5
		}
		sum += alpha / (c.CellSize[0] * c.CellSize[0])
	}
	if sum == 0 {
		return 0
	}
	return 1 / (phys.C * math.Sqrt(sum))
}

// TimeStep returns Dt, or CFL times the Courant limit when Dt is zero.
func (c *Config) TimeStep() float64 {
	if c.Dt > 0 {
		return c.Dt
	}
	return c.CFL * c.CourantLimit()
}
