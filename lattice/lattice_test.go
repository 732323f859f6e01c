package lattice

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEps = 1e-12

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, testEps)
}

func TestOpposite(t *testing.T) {
	for i := 0; i < Q; i++ {
		j := Opposite[i]
		for k := 0; k < 3; k++ {
			if Velocities[j][k] != -Velocities[i][k] {
				t.Errorf("%d) Opposite direction %d has velocity %v, "+
					"expected the negation of %v.", i, j,
					Velocities[j], Velocities[i])
				break
			}
		}
		if Opposite[j] != i {
			t.Errorf("%d) Opposite is not an involution: %d -> %d -> %d.",
				i, i, j, Opposite[j])
		}
		if Weights[j] != Weights[i] {
			t.Errorf("%d) Weight %g differs from opposite weight %g.",
				i, Weights[i], Weights[j])
		}
	}
}

func TestVelocitiesDistinct(t *testing.T) {
	seen := map[[3]int]bool{}
	for _, c := range Velocities {
		require.False(t, seen[c], "duplicate velocity %v", c)
		seen[c] = true
	}
	assert.Len(t, seen, Q)
}

func TestEquilibriumSumsToDensity(t *testing.T) {
	rnd := rand.New(rand.NewSource(295275912632))

	for n := 0; n < 100; n++ {
		rho := 0.5 + rnd.Float64()
		u := [3]float64{
			0.2 * (rnd.Float64() - 0.5),
			0.2 * (rnd.Float64() - 0.5),
			0.2 * (rnd.Float64() - 0.5),
		}

		sum := 0.0
		for i := 0; i < Q; i++ {
			sum += Equilibrium(i, rho, u)
		}
		if math.Abs(sum-rho) > 1e-12 {
			t.Errorf("%d) Equilibrium sums to %g, expected %g.", n, sum, rho)
		}

		var f [Q]float64
		EquilibriumSet(rho, u, &f)
		gotRho, gotU := Moments(&f)
		assert.InDelta(t, rho, gotRho, 1e-12)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, u[k], gotU[k], 1e-12)
		}
	}
}

func TestRelaxAtEquilibrium(t *testing.T) {
	u := [3]float64{0.05, -0.02, 0.01}
	n := NewEquilibriumNode(1.2, u, Fluid)
	before := n.F

	for _, tau := range []float64{0.6, 1.0, 1.7} {
		Relax(&n.F, 1/tau)
		for i := 0; i < Q; i++ {
			assert.InDelta(t, before[i], n.F[i], 1e-14,
				"tau = %g, direction %d", tau, i)
		}
	}
}

func TestRelaxConservesMassAndMomentum(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var f [Q]float64
	for i := range f {
		f[i] = Weights[i] * (1 + 0.1*(rnd.Float64()-0.5))
	}

	rho0, u0 := Moments(&f)
	relaxedRho, relaxedU := Relax(&f, 1/0.8)
	rho1, u1 := Moments(&f)

	assert.Equal(t, rho0, relaxedRho)
	assert.Equal(t, u0, relaxedU)
	assert.InDelta(t, rho0, rho1, 1e-14)
	for k := 0; k < 3; k++ {
		assert.InDelta(t, rho0*u0[k], rho1*u1[k], 1e-14)
	}
}

func TestRelaxFullyReachesEquilibrium(t *testing.T) {
	var f [Q]float64
	f[0], f[1] = 0.7, 0.3

	rho, u := Relax(&f, 1.0)
	for i := 0; i < Q; i++ {
		assert.InDelta(t, Equilibrium(i, rho, u), f[i], 1e-15)
	}
}

func TestMomentsNearZeroDensity(t *testing.T) {
	var f [Q]float64
	f[1] = 1e-12

	rho, u := Moments(&f)
	assert.Equal(t, 1e-12, rho)
	assert.Equal(t, [3]float64{}, u)
}

func TestNodeType(t *testing.T) {
	table := []struct {
		t     NodeType
		name  string
		fluid bool
	}{
		{Fluid, "Fluid", true},
		{Solid, "Solid", false},
		{Inlet, "Inlet", true},
		{Outlet, "Outlet", true},
		{EndNodeType, "Unknown", false},
	}

	for i, test := range table {
		if test.t.String() != test.name {
			t.Errorf("%d) Expected name %s, got %s.", i, test.name, test.t)
		}
		if test.t.IsFluid() != test.fluid {
			t.Errorf("%d) Expected IsFluid() = %v for %s.",
				i, test.fluid, test.name)
		}
	}
}

func TestRelaxationTime(t *testing.T) {
	nu := Viscosity([3]float64{0.1, 0.3, -1}, 0.1, 100)
	assert.InDelta(t, 3e-4, nu, 1e-15)
	assert.InDelta(t, 3*nu/CS2+0.5, RelaxationTime(nu), 1e-15)
	assert.Equal(t, 0.5, RelaxationTime(0))
}

func BenchmarkRelax(b *testing.B) {
	n := NewEquilibriumNode(1, [3]float64{0.1, 0, 0}, Fluid)
	n.F[3] += 0.01
	for i := 0; i < b.N; i++ {
		Relax(&n.F, 1/0.9)
	}
}
