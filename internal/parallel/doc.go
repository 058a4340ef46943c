// Package parallel provides the data-parallel execution backends used by
// the field and deposition kernels.
//
//   - [CPU]: chunked goroutines joined with a WaitGroup
//   - [Serial]: single goroutine, useful for reproducible runs
//
// Kernels call [For] and never block on anything but the join, so there
// is no cancellation inside a kernel. Callers that need to stop a run
// check their context between steps.
//
//	parallel.SetBackend(parallel.NewCPU(8))
//	parallel.For(n, 256, func(start, end int) { ... })
package parallel
