package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/sim"
)

type ExportData struct {
	Name       string               `json:"name"`
	Geometry   string               `json:"geometry"`
	Deposition string               `json:"deposition"`
	Order      int                  `json:"order"`
	Dt         float64              `json:"dt"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	History    map[string][]float64 `json:"history"`
	Metrics    map[string]float64   `json:"metrics"`
}

func newExport(cfg *config.Config, dt float64, result *sim.Result) ExportData {
	return ExportData{
		Name:       cfg.Name,
		Geometry:   cfg.Geometry,
		Deposition: cfg.Deposition,
		Order:      cfg.Order,
		Dt:         dt,
		Steps:      result.StepsTaken,
		Times:      result.Times,
		History:    result.History,
		Metrics:    result.Metrics,
	}
}

// ExportJSON writes a self-contained JSON document of one run to w.
func ExportJSON(w io.Writer, cfg *config.Config, dt float64, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newExport(cfg, dt, result))
}

func ExportJSONFile(path string, cfg *config.Config, dt float64, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportJSON(f, cfg, dt, result)
}
