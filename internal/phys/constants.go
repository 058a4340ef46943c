// Package phys holds the SI constants shared by the solver and deposition
// kernels.
package phys

const (
	// C is the speed of light in vacuum [m/s].
	C = 299792458.0
	// Epsilon0 is the vacuum permittivity [F/m].
	Epsilon0 = 8.8541878128e-12
	// Mu0 is the vacuum permeability [H/m], consistent with C and Epsilon0.
	Mu0 = 1.0 / (Epsilon0 * C * C)
	// Q is the elementary charge [C].
	Q = 1.602176634e-19
	// Me is the electron mass [kg].
	Me = 9.1093837015e-31
	// Mp is the proton mass [kg].
	Mp = 1.67262192369e-27
)

const (
	InvC2 = 1.0 / (C * C)
	C2    = C * C
)
