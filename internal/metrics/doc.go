// Package metrics implements sim.Metric diagnostics: field and kinetic
// energy, energy drift, Gauss's law residual, current sums, peak field
// and a stability fraction.
package metrics
