package pipeline

import (
	"github.com/phil-mansfield/golbm/device"
	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/voxel"
)

// kernel carries what every lattice kernel needs: the grid and the shared
// classification.
type kernel struct {
	g   *geom.Grid
	cls *voxel.Classification
}

// forEach calls f for every cell of blk with its coordinates and index.
func (k *kernel) forEach(blk geom.CellBounds, f func(x, y, z, idx int)) {
	end := blk.End()
	for z := blk.Origin[2]; z < end[2]; z++ {
		for y := blk.Origin[1]; y < end[1]; y++ {
			idx := k.g.Idx(blk.Origin[0], y, z)
			for x := blk.Origin[0]; x < end[0]; x++ {
				f(x, y, z, idx)
				idx++
			}
		}
	}
}

// collision relaxes every node of A towards equilibrium and writes the
// result to B. Node type has no effect here: Solid nodes are relaxed too and
// only differ once boundaryApply bounces them back.
type collision struct {
	kernel
	omega float64
}

func (k *collision) Name() string { return "Collision" }

func (k *collision) Run(bufs *device.Buffers, blk geom.CellBounds) {
	k.forEach(blk, func(x, y, z, idx int) {
		src, dst := &bufs.A[idx], &bufs.B[idx]
		*dst = *src
		dst.Type = k.cls.Type(idx)
		dst.Density, dst.Velocity = lattice.Relax(&dst.F, k.omega)
	})
}

// streaming pulls component i of every node in A from the node at x - c_i
// in B. Components whose source lies outside the grid are not read, so they
// keep the value A held before collision. Only the inlet, outlet and solid
// nodes have those values replaced by boundaryApply; Fluid nodes on the y
// and z faces of the domain carry them into the next step.
type streaming struct {
	kernel
}

func (k *streaming) Name() string { return "Streaming" }

func (k *streaming) Run(bufs *device.Buffers, blk geom.CellBounds) {
	k.forEach(blk, func(x, y, z, idx int) {
		dst := &bufs.A[idx]
		for i := 0; i < lattice.Q; i++ {
			c := &lattice.Velocities[i]
			src, ok := k.g.IdxCheck(x-c[0], y-c[1], z-c[2])
			if ok {
				dst.F[i] = bufs.B[src].F[i]
			}
		}
		dst.Type = bufs.B[idx].Type
	})
}

// boundaryCapture copies the streamed distributions in A to B so that
// boundaryApply reads pre-boundary values regardless of block order.
type boundaryCapture struct {
	kernel
}

func (k *boundaryCapture) Name() string { return "BoundaryCapture" }

func (k *boundaryCapture) Run(bufs *device.Buffers, blk geom.CellBounds) {
	k.forEach(blk, func(x, y, z, idx int) {
		bufs.B[idx] = bufs.A[idx]
	})
}

// boundaryApply rewrites the non-fluid nodes of A from the values captured
// in B.
type boundaryApply struct {
	kernel
	inlet [3]float64
}

func (k *boundaryApply) Name() string { return "BoundaryEnforcement" }

func (k *boundaryApply) Run(bufs *device.Buffers, blk geom.CellBounds) {
	k.forEach(blk, func(x, y, z, idx int) {
		dst, captured := &bufs.A[idx], &bufs.B[idx]

		switch k.cls.Type(idx) {
		case lattice.Solid:
			for i := 0; i < lattice.Q; i++ {
				dst.F[i] = captured.F[lattice.Opposite[i]]
			}
		case lattice.Inlet:
			rho, _ := lattice.Moments(&captured.F)
			lattice.EquilibriumSet(rho, k.inlet, &dst.F)
		case lattice.Outlet:
			if x > k.g.Origin[0] {
				dst.F = bufs.B[idx-1].F
			}
		}
	})
}
