// Package analysis post-processes simulation output.
//
// [PowerSpectrum] and [DominantFrequency] look at a recorded metric
// history, [Summarize] reduces one to its moments and drift,
// [PhaseSpace] samples a species' phase space for [PhasePortraitToASCII],
// and [ContinuityResidual] checks that a deposition strategy conserves
// charge on a single batch:
//
//	res := analysis.ContinuityResidual(&batch, dep, params, grid.CellBox(cells))
//	if res > 1e-10 {
//	    // deposition is not charge conserving
//	}
package analysis
