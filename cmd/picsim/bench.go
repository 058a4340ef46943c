package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/picsim/internal/config"
	"github.com/san-kum/picsim/internal/parallel"
	"github.com/san-kum/picsim/internal/sim"
)

func runBench(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(benchPreset)
	if base == nil {
		return fmt.Errorf("unknown preset: %s", benchPreset)
	}
	base.Threads = benchThreads
	parallel.SetBackend(parallel.Select(benchThreads))

	fmt.Printf("benchmarking %s (%s, %d steps)\n\n", benchPreset, parallel.GetBackend().Name(), benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tDEPOSITION\tPARTICLES\tTIME\tSTEPS/SEC\tPARTICLES/SEC")

	for ord := 0; ord <= 3; ord++ {
		for _, strategy := range []string{"esirkepov", "direct"} {
			cfg := base.Clone()
			cfg.Order = ord
			cfg.Deposition = strategy
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(w, "%d\t%s\t-\t-\t%v\t-\n", ord, strategy, err)
				continue
			}
			s, err := sim.Build(cfg)
			if err != nil {
				return err
			}
			n := s.NumParticles()

			start := time.Now()
			taken := 0
			for ; taken < benchSteps; taken++ {
				if err := s.Step(cmd.Context()); err != nil {
					return err
				}
			}
			elapsed := time.Since(start)
			rate := float64(taken) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.1f\t%.3g\n",
				ord, strategy, n, elapsed.Round(time.Microsecond), rate, rate*float64(n))
		}
	}
	return w.Flush()
}
