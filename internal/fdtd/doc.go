// Package fdtd advances the electromagnetic fields of a particle-in-cell
// step with finite differences on a staggered grid.
//
// A [Solver] is built once from a [Config]; construction resolves the
// derivative family (Yee or nodal) and the geometry (3-D, XZ or RZ) and
// rejects degenerate cell sizes, unknown algorithms and layouts that do not
// match the algorithm's staggering. Afterwards every method is a pure
// in-place transform of its output fields: nothing is allocated and no
// state is kept between calls.
//
// # Calling order
//
// The solver exposes the primitives, not the time loop. A caller stepping
// with the leapfrog scheme must, for every step:
//
//  1. finish depositing the current of every species into J,
//  2. call [Solver.EvolveE] (or [Solver.MacroscopicEvolveE]),
//  3. call [Solver.EvolveB] with the E just produced,
//  4. optionally call [Solver.EvolveF] with rho at the new time.
//
// No call reads and writes the same field, so no double buffering is
// needed. Inside an absorbing layer the split-field variants
// [Solver.EvolveEPML], [Solver.EvolveBPML] and [Solver.EvolveFPML] take
// the place of the ordinary ones.
//
// # Errors
//
// Configuration errors wrap [ErrConfig] or [grid.ErrLayout]. Passing
// fields of the wrong staggering while stepping is a programming error
// and panics with an error wrapping [grid.ErrLayout].
package fdtd
