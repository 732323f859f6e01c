/*package lattice contains the D3Q27 velocity model: discrete velocities,
weights, equilibrium distributions, moments and BGK relaxation.
*/
package lattice

const (
	// Q is the number of discrete velocities.
	Q = 27
	// CS2 is the lattice speed of sound squared.
	CS2 = 1.0 / 3.0
	// DensityEpsilon is the density below which velocity is reported as
	// zero.
	DensityEpsilon = 1e-10
)

// Velocities are ordered as: rest, 6 faces, 12 edges, 8 corners.
var Velocities = [Q][3]int{
	{0, 0, 0},

	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},

	{1, 1, 0}, {1, -1, 0}, {-1, 1, 0}, {-1, -1, 0},
	{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1},
	{0, 1, 1}, {0, 1, -1}, {0, -1, 1}, {0, -1, -1},

	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
	{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
}

var Weights = [Q]float64{
	8.0 / 27,

	2.0 / 27, 2.0 / 27, 2.0 / 27, 2.0 / 27, 2.0 / 27, 2.0 / 27,

	1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 54,
	1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 54,
	1.0 / 54, 1.0 / 54, 1.0 / 54, 1.0 / 54,

	1.0 / 216, 1.0 / 216, 1.0 / 216, 1.0 / 216,
	1.0 / 216, 1.0 / 216, 1.0 / 216, 1.0 / 216,
}

// Opposite maps each direction to the direction with the negated velocity.
var Opposite = [Q]int{
	0,
	2, 1, 4, 3, 6, 5,
	10, 9, 8, 7, 14, 13, 12, 11, 18, 17, 16, 15,
	26, 25, 24, 23, 22, 21, 20, 19,
}

// Dot returns c_i . u.
func Dot(i int, u [3]float64) float64 {
	c := &Velocities[i]
	return float64(c[0])*u[0] + float64(c[1])*u[1] + float64(c[2])*u[2]
}
