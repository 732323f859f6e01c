package lattice

import (
	"math"
)

// NodeType tags the role a grid cell plays during boundary enforcement.
type NodeType uint32

const (
	Fluid NodeType = iota
	Solid
	Inlet
	Outlet
	EndNodeType
)

var nodeTypeNames = [EndNodeType]string{"Fluid", "Solid", "Inlet", "Outlet"}

func (t NodeType) String() string {
	if t >= EndNodeType {
		return "Unknown"
	}
	return nodeTypeNames[t]
}

// IsFluid returns true for every tag except Solid. Inlet and outlet nodes
// are fluid nodes with a boundary role.
func (t NodeType) IsFluid() bool { return t != Solid && t < EndNodeType }

// Node is the state of a single grid cell.
type Node struct {
	F        [Q]float64
	Density  float64
	Velocity [3]float64
	Type     NodeType
}

// Equilibrium returns the equilibrium distribution in direction i for the
// given density and velocity.
func Equilibrium(i int, rho float64, u [3]float64) float64 {
	cu := Dot(i, u)
	u2 := u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
	return Weights[i] * rho * (1 + cu/CS2 +
		cu*cu/(2*CS2*CS2) - u2/(2*CS2))
}

// EquilibriumSet writes all Q equilibrium distributions into f.
func EquilibriumSet(rho float64, u [3]float64, f *[Q]float64) {
	u2 := u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
	for i := 0; i < Q; i++ {
		cu := Dot(i, u)
		f[i] = Weights[i] * rho * (1 + cu/CS2 +
			cu*cu/(2*CS2*CS2) - u2/(2*CS2))
	}
}

// Moments returns the density and velocity of a set of distributions.
func Moments(f *[Q]float64) (rho float64, u [3]float64) {
	for i := 0; i < Q; i++ {
		fi := f[i]
		rho += fi
		c := &Velocities[i]
		u[0] += fi * float64(c[0])
		u[1] += fi * float64(c[1])
		u[2] += fi * float64(c[2])
	}

	if rho < DensityEpsilon {
		return rho, [3]float64{}
	}

	u[0] /= rho
	u[1] /= rho
	u[2] /= rho
	return rho, u
}

// Relax applies BGK relaxation with frequency omega = 1 / tau to f in place
// and returns the moments it relaxed towards.
func Relax(f *[Q]float64, omega float64) (rho float64, u [3]float64) {
	rho, u = Moments(f)
	u2 := u[0]*u[0] + u[1]*u[1] + u[2]*u[2]
	for i := 0; i < Q; i++ {
		cu := Dot(i, u)
		eq := Weights[i] * rho * (1 + cu/CS2 +
			cu*cu/(2*CS2*CS2) - u2/(2*CS2))
		f[i] += omega * (eq - f[i])
	}
	return rho, u
}

// NewEquilibriumNode returns a node of type t in equilibrium at the given
// density and velocity.
func NewEquilibriumNode(rho float64, u [3]float64, t NodeType) Node {
	n := Node{Density: rho, Velocity: u, Type: t}
	EquilibriumSet(rho, u, &n.F)
	return n
}

// UpdateMoments recomputes Density and Velocity from F.
func (n *Node) UpdateMoments() {
	n.Density, n.Velocity = Moments(&n.F)
}

// Speed returns the magnitude of the node's velocity.
func (n *Node) Speed() float64 {
	u := &n.Velocity
	return math.Sqrt(u[0]*u[0] + u[1]*u[1] + u[2]*u[2])
}
