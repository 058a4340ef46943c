package config

import (
	"sort"

	"github.com/san-kum/picsim/internal/phys"
)

const um = 1e-6

func electrons(count int, center, spread, momentum [3]float64, seed uint64) SpeciesConfig {
	return SpeciesConfig{
		Name:     "electrons",
		Charge:   -phys.Q,
		Mass:     phys.Me,
		Count:    count,
		Weight:   1e4,
		Center:   center,
		Spread:   spread,
		Momentum: momentum,
		Seed:     seed,
	}
}

var Presets = map[string]*Config{
	"vacuum": {
		Name: "vacuum", Geometry: "3d",
		Cells: [3]int{16, 16, 16}, CellSize: [3]float64{um, um, um},
		CFL: 0.95, Steps: 60, Algorithm: "yee", Deposition: "esirkepov", Order: 1, Modes: 1, DiagEvery: 1,
		Pulse: &PulseConfig{Amplitude: 1e9, Center: [3]float64{8 * um, 8 * um, 8 * um}, Width: 2 * um},
	},
	"beam3d": {
		Name: "beam3d", Geometry: "3d",
		Cells: [3]int{16, 16, 24}, CellSize: [3]float64{um, um, um},
		CFL: 0.9, Steps: 40, Algorithm: "yee", Deposition: "esirkepov", Order: 2, Modes: 1, DivClean: true, DiagEvery: 1,
		Species: []SpeciesConfig{
			electrons(2000, [3]float64{8 * um, 8 * um, 8 * um}, [3]float64{um, um, 2 * um}, [3]float64{0, 0, 0.8}, 1),
		},
	},
	"beam2d": {
		Name: "beam2d", Geometry: "xz",
		Cells: [3]int{32, 1, 48}, CellSize: [3]float64{um, um, um},
		CFL: 0.9, Steps: 60, Algorithm: "yee", Deposition: "esirkepov", Order: 3, Modes: 1, DiagEvery: 1,
		Species: []SpeciesConfig{
			electrons(4000, [3]float64{16 * um, 0, 12 * um}, [3]float64{2 * um, 0, 3 * um}, [3]float64{0.1, 0.2, 1.5}, 2),
		},
	},
	"ring-rz": {
		Name: "ring-rz", Geometry: "rz",
		Cells: [3]int{24, 1, 48}, CellSize: [3]float64{um, um, um},
		CFL: 0.9, Steps: 60, Algorithm: "yee", Deposition: "esirkepov", Order: 1, Modes: 2, DiagEvery: 1,
		Species: []SpeciesConfig{
			electrons(3000, [3]float64{3 * um, 0, 12 * um}, [3]float64{2 * um, 2 * um, 2 * um}, [3]float64{0, 0, 1}, 3),
		},
	},
	"pml-pulse": {
		Name: "pml-pulse", Geometry: "xz",
		Cells: [3]int{64, 1, 64}, CellSize: [3]float64{um, um, um},
		CFL: 0.95, Steps: 160, Algorithm: "yee", Deposition: "esirkepov", Order: 1, Modes: 1, DiagEvery: 1,
		PML:   &PMLConfig{Thickness: 10, Strength: 4, Order: 2},
		Pulse: &PulseConfig{Amplitude: 1e9, Center: [3]float64{32 * um, 0, 32 * um}, Width: 3 * um},
	},
	"conductor": {
		Name: "conductor", Geometry: "3d",
		Cells: [3]int{16, 16, 16}, CellSize: [3]float64{um, um, um},
		CFL: 0.95, Steps: 60, Algorithm: "yee", Deposition: "esirkepov", Order: 1, Modes: 1, DiagEvery: 1,
		Medium: &MediumConfig{Sigma: 2e3, EpsR: 1, MuR: 1, Method: "backward-euler"},
		Pulse:  &PulseConfig{Amplitude: 1e9, Center: [3]float64{8 * um, 8 * um, 8 * um}, Width: 2 * um},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
