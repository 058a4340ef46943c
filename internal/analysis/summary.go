package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one metric history.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// Drift is |last - first| / |first|, or |last - first| when first is
	// zero.
	Drift float64
}

func Summarize(data []float64) Summary {
	s := Summary{N: len(data)}
	if len(data) == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		s.StdDev = 0
	}
	s.Min = floats.Min(data)
	s.Max = floats.Max(data)
	first, last := data[0], data[len(data)-1]
	s.Drift = math.Abs(last - first)
	if first != 0 {
		s.Drift /= math.Abs(first)
	}
	return s
}
