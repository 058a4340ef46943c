// Package deposit accumulates particle currents and charge onto the grid.
//
// Two strategies are provided. Direct deposits q w v at the mid-step
// position using separate node and cell shape factors for every staggered
// direction. Esirkepov deposits the current whose discrete divergence
// matches the change of the deposited charge between the start and the end
// of the step, so that
//
//	(rho_new - rho_old)/dt + div J = 0
//
// holds at every node up to rounding when both charges come from Charge
// with the same order.
//
// # Conventions
//
// Positions in a Batch are at the end of the step; the start-of-step
// position is recovered as x - dt v with v = u/gamma. Momenta are gamma*v
// in m/s. In cylindrical geometry particles carry Cartesian positions and
// momenta; the kernels convert them to (r, theta) and write mode m into
// components 2m-1 (real part) and 2m (imaginary part).
//
// # Concurrency
//
// Particles are split over the active parallel backend and every write goes
// through grid.Field.AtomicAdd. Results are therefore identical across
// backends up to floating-point reassociation.
package deposit
