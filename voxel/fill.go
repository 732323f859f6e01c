package voxel

import (
	"github.com/phil-mansfield/golbm/geom"
)

var faceNeighbors = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// fillInterior marks every non-solid cell which cannot be reached from a
// face of the domain through 6-connected non-solid cells as solid.
func fillInterior(g *geom.Grid, solid []bool) {
	reached := make([]bool, g.Volume)
	queue := make([]int, 0, 2*(g.Width[0]*g.Width[1]+
		g.Width[1]*g.Width[2]+g.Width[0]*g.Width[2]))

	seed := func(x, y, z int) {
		idx := g.Idx(x, y, z)
		if !solid[idx] && !reached[idx] {
			reached[idx] = true
			queue = append(queue, idx)
		}
	}

	nx, ny, nz := g.Width[0], g.Width[1], g.Width[2]
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			seed(0, y, z)
			seed(nx-1, y, z)
		}
	}
	for z := 0; z < nz; z++ {
		for x := 0; x < nx; x++ {
			seed(x, 0, z)
			seed(x, ny-1, z)
		}
	}
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			seed(x, y, 0)
			seed(x, y, nz-1)
		}
	}

	for len(queue) > 0 {
		idx := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y, z := g.Coords(idx)

		for _, d := range faceNeighbors {
			nIdx, ok := g.IdxCheck(x+d[0], y+d[1], z+d[2])
			if !ok || solid[nIdx] || reached[nIdx] {
				continue
			}
			reached[nIdx] = true
			queue = append(queue, nIdx)
		}
	}

	for idx := range solid {
		if !reached[idx] {
			solid[idx] = true
		}
	}
}
