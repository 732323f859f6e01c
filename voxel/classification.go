/*package voxel converts triangulated surface meshes into per-cell node
classifications on a regular grid.
*/
package voxel

import (
	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// Classification is an immutable per-cell tag table indexed by linear cell
// index. It is built once and shared read-only by every pipeline phase.
type Classification struct {
	grid     geom.Grid
	types    []lattice.NodeType
	boundary []bool
	counts   [lattice.EndNodeType]int
}

func newClassification(
	g *geom.Grid, types []lattice.NodeType, boundary []bool,
) *Classification {
	c := &Classification{grid: *g, types: types, boundary: boundary}
	if c.boundary == nil {
		c.boundary = make([]bool, len(types))
	}
	for _, t := range types {
		c.counts[t]++
	}
	return c
}

// FromTypes builds a Classification from an explicit tag for every cell of
// g. The tags are copied. No inlet or outlet planes are imposed.
func FromTypes(g *geom.Grid, types []lattice.NodeType) (*Classification, error) {
	if len(types) != g.Volume {
		return nil, lbmerr.Config("FromTypes",
			"Grid has %d cells, but %d node types were given",
			g.Volume, len(types))
	}
	for i, t := range types {
		if t >= lattice.EndNodeType {
			return nil, lbmerr.Config("FromTypes",
				"Cell %d has unrecognized node type %d", i, t)
		}
	}

	cp := make([]lattice.NodeType, len(types))
	copy(cp, types)
	return newClassification(g, cp, nil), nil
}

// Grid returns the grid the classification covers.
func (c *Classification) Grid() *geom.Grid {
	g := c.grid
	return &g
}

// Len returns the number of cells.
func (c *Classification) Len() int { return len(c.types) }

// Type returns the tag of the cell with linear index idx.
func (c *Classification) Type(idx int) lattice.NodeType { return c.types[idx] }

// TypeAt returns the tag of the cell at (x, y, z).
func (c *Classification) TypeAt(x, y, z int) lattice.NodeType {
	return c.types[c.grid.Idx(x, y, z)]
}

// IsBoundary returns true if the cell neighbours a cell that was marked
// Solid by the surface test. This is informational only.
func (c *Classification) IsBoundary(idx int) bool { return c.boundary[idx] }

// Count returns the number of cells with tag t.
func (c *Classification) Count(t lattice.NodeType) int {
	if t >= lattice.EndNodeType {
		return 0
	}
	return c.counts[t]
}

// Types returns a copy of the tag table.
func (c *Classification) Types() []lattice.NodeType {
	cp := make([]lattice.NodeType, len(c.types))
	copy(cp, c.types)
	return cp
}
