package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/picsim/internal/phys"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Geometry != "3d" {
		t.Errorf("expected geometry 3d, got %s", cfg.Geometry)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.TimeStep() <= 0 {
		t.Error("time step should be positive")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if cfg == nil {
				t.Fatal("expected preset, got nil")
			}
			if cfg.Name != name {
				t.Errorf("preset %s carries name %s", name, cfg.Name)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("invalid: %v", err)
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	a := GetPreset("beam3d")
	a.Species[0].Count = 1
	a.Steps = 1
	b := GetPreset("beam3d")
	if b.Species[0].Count == 1 || b.Steps == 1 {
		t.Error("preset mutated through a returned copy")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	want := []string{"beam2d", "beam3d", "conductor", "pml-pulse", "ring-rz", "vacuum"}
	if len(names) != len(want) {
		t.Fatalf("expected %d presets, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("preset %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestCourantLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CellSize = [3]float64{1, 2, 2}
	want := 1 / (phys.C * math.Sqrt(1+0.25+0.25))
	if got := cfg.CourantLimit(); math.Abs(got-want) > 1e-12*want {
		t.Errorf("3d limit: expected %g, got %g", want, got)
	}

	cfg.Geometry = "xz"
	want = 1 / (phys.C * math.Sqrt(1+0.25))
	if got := cfg.CourantLimit(); math.Abs(got-want) > 1e-12*want {
		t.Errorf("xz limit: expected %g, got %g", want, got)
	}

	cfg.Geometry = "rz"
	cfg.Modes = 2
	want = 1 / (phys.C * math.Sqrt(1+0.2105+0.25))
	if got := cfg.CourantLimit(); math.Abs(got-want) > 1e-12*want {
		t.Errorf("rz limit: expected %g, got %g", want, got)
	}
}

func TestTimeStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 1e-16
	if cfg.TimeStep() != 1e-16 {
		t.Errorf("explicit dt ignored: %g", cfg.TimeStep())
	}
	cfg.Dt = 0
	cfg.CFL = 0.5
	if got, want := cfg.TimeStep(), 0.5*cfg.CourantLimit(); got != want {
		t.Errorf("expected %g, got %g", want, got)
	}
}

func TestValidateAcceptsCourantLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = cfg.CourantLimit()
	if err := cfg.Validate(); err != nil {
		t.Errorf("dt at the limit rejected: %v", err)
	}
	cfg.Dt = 0
	cfg.CFL = 1
	if err := cfg.Validate(); err != nil {
		t.Errorf("cfl 1 rejected: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad geometry", func(c *Config) { c.Geometry = "4d" }},
		{"bad algorithm", func(c *Config) { c.Algorithm = "psatd" }},
		{"bad deposition", func(c *Config) { c.Deposition = "vay" }},
		{"order too high", func(c *Config) { c.Order = 4 }},
		{"zero cells", func(c *Config) { c.Cells[2] = 0 }},
		{"negative cell size", func(c *Config) { c.CellSize[0] = -1 }},
		{"no dt or cfl", func(c *Config) { c.Dt = 0; c.CFL = 0 }},
		{"cfl above 1", func(c *Config) { c.Dt = 0; c.CFL = 1.2 }},
		{"dt above courant limit", func(c *Config) { c.Dt = 1.01 * c.CourantLimit() }},
		{"rz dt above multimode limit", func(c *Config) {
			c.Geometry = "rz"
			c.Modes = 3
			c.Dt = 0.99 * (&Config{Geometry: "rz", CellSize: c.CellSize, Modes: 1}).CourantLimit()
		}},
		{"rz without modes", func(c *Config) { c.Geometry = "rz"; c.Modes = 0 }},
		{"rz nodal", func(c *Config) { c.Geometry = "rz"; c.Algorithm = "nodal"; c.Deposition = "direct" }},
		{"rz pml", func(c *Config) { c.Geometry = "rz"; c.PML = &PMLConfig{Thickness: 4} }},
		{"thick pml", func(c *Config) { c.PML = &PMLConfig{Thickness: 16} }},
		{"pml and medium", func(c *Config) {
			c.PML = &PMLConfig{Thickness: 4}
			c.Medium = &MediumConfig{EpsR: 1, MuR: 1}
		}},
		{"bad medium", func(c *Config) { c.Medium = &MediumConfig{Sigma: -1, EpsR: 1, MuR: 1} }},
		{"nodal esirkepov", func(c *Config) { c.Algorithm = "nodal" }},
		{"massless species", func(c *Config) { c.Species = []SpeciesConfig{{Name: "x", Count: 1}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "run"+ext)
			orig := GetPreset("pml-pulse")
			if err := Save(path, orig); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.Cells != orig.Cells || got.Geometry != orig.Geometry {
				t.Errorf("grid mismatch: %v %s", got.Cells, got.Geometry)
			}
			if got.PML == nil || got.PML.Thickness != orig.PML.Thickness {
				t.Errorf("pml lost: %+v", got.PML)
			}
			if got.Pulse == nil || got.Pulse.Width != orig.Pulse.Width {
				t.Errorf("pulse lost: %+v", got.Pulse)
			}
		})
	}
}

func TestLoadPartialOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.toml")
	body := "geometry = \"xz\"\ncells = [8, 1, 8]\n\n[[species]]\nname = \"ions\"\nmass = 1.0\ncount = 4\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Geometry != "xz" || cfg.Cells != [3]int{8, 1, 8} {
		t.Errorf("fields not applied: %s %v", cfg.Geometry, cfg.Cells)
	}
	if cfg.Algorithm != "yee" || cfg.CFL != DefaultCFL {
		t.Errorf("defaults lost: %s %g", cfg.Algorithm, cfg.CFL)
	}
	if len(cfg.Species) != 1 || cfg.Species[0].Count != 4 {
		t.Errorf("species not decoded: %+v", cfg.Species)
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}
