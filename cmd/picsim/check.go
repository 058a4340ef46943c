package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/picsim/internal/analysis"
	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/deposit"
	"github.com/san-kum/picsim/internal/grid"
	"github.com/san-kum/picsim/internal/metrics"
	"github.com/san-kum/picsim/internal/phys"
	"github.com/san-kum/picsim/internal/viz"
)

const (
	checkCells     = 16
	checkParticles = 500
	continuityTol  = 1e-10
)

// checkBatch scatters particles over the middle of the check box with
// random momenta below c.
func checkBatch(rng *rand.Rand, g grid.Geometry, cell float64) *deposit.Batch {
	b := &deposit.Batch{}
	lo, hi := 4*cell, (checkCells-4)*cell
	u := func() float64 { return (2*rng.Float64() - 1) * 0.6 * phys.C }
	for i := 0; i < checkParticles; i++ {
		x := lo + (hi-lo)*rng.Float64()
		y := lo + (hi-lo)*rng.Float64()
		z := lo + (hi-lo)*rng.Float64()
		switch g {
		case grid.CartesianXZ:
			y = 0
		case grid.Cylindrical:
			r, th := 0.5*(x-lo), 2*math.Pi*rng.Float64()
			x, y = r*math.Cos(th), r*math.Sin(th)
		}
		b.Append(x, y, z, u(), u(), u(), 1+rng.Float64())
	}
	return b
}

func runChecks(cmd *cobra.Command, args []string) error {
	failed := 0
	const cell = 1e-6

	fmt.Println("charge conservation (|drho + dt div J| / max rho, all rz modes)")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GEOMETRY\tORDER\tSTRATEGY\tRESIDUAL\tRESULT")
	for _, g := range []grid.Geometry{grid.Cartesian3D, grid.CartesianXZ, grid.Cylindrical} {
		n := [3]int{checkCells, checkCells, checkCells}
		nmodes := 1
		if g.Is2D() {
			n[1] = 1
		}
		if g == grid.Cylindrical {
			nmodes = 2
		}
		p := deposit.Params{
			Dt:       0.5 * cell / phys.C,
			CellSize: [3]float64{cell, cell, cell},
			Q:        -phys.Q,
			NModes:   nmodes,
		}
		for ord := 0; ord <= 3; ord++ {
			for _, s := range []deposit.Strategy{deposit.Esirkepov, deposit.Direct} {
				d, err := deposit.New(s, g, ord)
				if err != nil {
					return err
				}
				b := checkBatch(rand.New(rand.NewPCG(uint64(ord), uint64(g))), g, cell)
				res := analysis.ContinuityResidual(b, d, p, grid.CellBox(n))

				verdict := viz.Subtle.Render("n/a")
				if s == deposit.Esirkepov {
					verdict = viz.StatusRunning.Render("PASS")
					if res > continuityTol {
						verdict = viz.StatusFailed.Render("FAIL")
						failed++
					}
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%.3e\t%s\n", g, ord, s, res, verdict)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nabsorbing boundary (field energy left after the pulse reaches the edges)")
	open, closed, err := pmlCheck(cmd)
	if err != nil {
		return err
	}
	verdict := viz.StatusRunning.Render("PASS")
	if open >= closed {
		verdict = viz.StatusFailed.Render("FAIL")
		failed++
	}
	fmt.Printf("  with PML: %.3e   closed box: %.3e   %s\n", open, closed, verdict)

	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

// pmlCheck runs the pml-pulse preset with and without its PML and returns
// the final field energy of each relative to the initial one.
func pmlCheck(cmd *cobra.Command) (open, closed float64, err error) {
	run := func(cfg *config.Config) (float64, error) {
		s, err := build(cfg)
		if err != nil {
			return 0, err
		}
		energy := metrics.NewFieldEnergy()
		energy.Observe(s.State())
		initial := energy.Value()
		start := time.Now()
		if _, err := s.Run(cmd.Context(), cfg.Steps); err != nil {
			return 0, err
		}
		energy.Observe(s.State())
		fmt.Printf("  %-10s %d steps in %v\n", pmlLabel(cfg), cfg.Steps, time.Since(start).Round(time.Millisecond))
		return energy.Value() / initial, nil
	}

	cfg := config.GetPreset("pml-pulse")
	if open, err = run(cfg); err != nil {
		return 0, 0, err
	}
	box := cfg.Clone()
	box.PML = nil
	if closed, err = run(box); err != nil {
		return 0, 0, err
	}
	return open, closed, nil
}

func pmlLabel(cfg *config.Config) string {
	if cfg.PML != nil {
		return "pml"
	}
	return "closed"
}
