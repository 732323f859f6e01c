package lattice

// Viscosity returns the kinematic viscosity U * L / Re implied by a Reynolds
// number, where U is the largest component of the inlet velocity and L is
// the grid spacing.
func Viscosity(inlet [3]float64, length, reynolds float64) float64 {
	u := inlet[0]
	if inlet[1] > u {
		u = inlet[1]
	}
	if inlet[2] > u {
		u = inlet[2]
	}
	return u * length / reynolds
}

// RelaxationTime returns the relaxation time tau = 3 nu / cs^2 + 1/2.
func RelaxationTime(nu float64) float64 {
	return 3*nu/CS2 + 0.5
}
