// Package pml implements the split-field perfectly matched layer that
// absorbs outgoing waves at the edges of the domain.
//
// Each E component is split into sub-components driven by the curl along
// one of the two other axes (plus one driven by grad F), each B component
// into two. The field solver advances the sub-components with
// fdtd.Solver.EvolveEPML and friends; this package provides the damping
// profiles and the operations that depend on them:
//
//   - [Region.PushCurrent] adds a deposited current to the split E,
//     apportioned between sub-components with [Apportion]
//   - [Region.DampJ] damps currents deposited inside the layer
//   - [Region.DampFields] damps the split fields once per step
//
// Profiles are computed in [New] and depend only on position. Cylindrical
// geometry is rejected with [ErrUnsupported].
package pml
