// Package grid holds the index boxes, staggered field arrays and layouts
// shared by the field solver, the depositors and the PML region.
//
// # Index space
//
// Every field is indexed by (i, j, k, n). In the 2-D geometries axis 0 is x
// (or r), axis 2 is z and axis 1 keeps a single index 0, so one kernel body
// serves all geometries. Component n is the azimuthal mode slot in
// cylindrical geometry and the split sub-component inside a PML.
//
// # Staggering
//
// A [Field] carries a [Staggering] telling, per axis, whether its points sit
// on nodes or cell centers. [YeeLayout] declares the Yee arrangement for E,
// B, J, F and rho; kernels check declarations once at construction and
// reject mismatches with [ErrLayout].
//
// # Concurrency
//
// [Field.AtomicAdd] is the only write that may race. Everything else
// assumes one writer per point, which [ParallelFor] guarantees.
package grid
