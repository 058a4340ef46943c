// Package sim drives the field solver and current deposition through a
// leapfrog time loop.
//
// A step moves every particle ballistically, deposits current and charge
// for all species concurrently, then advances E and B (and F with
// divergence cleaning). With an absorbing layer configured the update runs
// on split fields covering the whole domain, which are summed back into E,
// B and F after damping. Particles that leave the domain are removed.
//
// Metrics observe the State after sampled steps; observers see every step.
package sim
