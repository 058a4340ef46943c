// Package viz renders simulation state for the terminal.
//
//   - [FieldMap]: shaded slice of one field component
//   - [ParticleView]: Braille projection of the particles onto the z-x plane
//   - [MetricsTable], [HistoryPlot]: final metrics and their history
//   - [Theme]: lipgloss color schemes shared with the live view
//
// Nothing here steps a simulation; callers pass in a *sim.State or
// recorded history.
package viz
