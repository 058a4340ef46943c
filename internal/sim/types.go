package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/fdtd"
	"github.com/san-kum/picsim/internal/grid"
)

var (
	// ErrInvalidState indicates a field holding NaN or Inf after a step.
	ErrInvalidState = errors.New("sim: invalid field state (NaN or Inf detected)")

	// ErrBuild indicates a configuration the simulator cannot be built from.
	ErrBuild = errors.New("sim: cannot build simulator")
)

// StepError wraps an error with the step it happened at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g s): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error { return e.Wrapped }

// Species is one particle population. The batch is owned by the
// simulator and moved in place every step.
type Species struct {
	Name   string
	Charge float64
	Mass   float64
	Batch  deposit.Batch
}

// State is what metrics and observers see after every step. It aliases
// the simulator's fields and must not be retained past the callback.
type State struct {
	Step     int
	Time     float64
	Dt       float64
	Geometry grid.Geometry
	CellSize [3]float64

	E, B, J grid.Vector
	F, Rho  *grid.Field
	Solver  *fdtd.Solver
	Species []*Species
}

type Metric interface {
	Name() string
	Observe(st *State)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(st *State)
}

type Result struct {
	Times []float64
	// History holds one sample per metric per recorded step.
	History    map[string][]float64
	Metrics    map[string]float64
	StepsTaken int
}

func newResult(metrics []Metric) *Result {
	r := &Result{
		History: make(map[string][]float64, len(metrics)),
		Metrics: make(map[string]float64, len(metrics)),
	}
	for _, m := range metrics {
		r.History[m.Name()] = nil
	}
	return r
}
