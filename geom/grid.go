/*package geom contains grid indexing and the triangle geometry used to
voxelize surface meshes.
*/
package geom

// Grid provides an interface for reasoning over a 1D slice as if it were a
// 3D grid. The x axis varies fastest.
type Grid struct {
	CellBounds
	Length, Area, Volume int
	uBounds              [3]int
}

// CellBounds represents a bounding box aligned to grid cells.
type CellBounds struct {
	Origin, Width [3]int
}

// NewGrid returns a new Grid instance.
func NewGrid(origin [3]int, width [3]int) *Grid {
	g := &Grid{}
	g.Init(origin, width)
	return g
}

// NewDomain returns a Grid with its origin at zero and the given extents.
func NewDomain(nx, ny, nz int) *Grid {
	return NewGrid([3]int{}, [3]int{nx, ny, nz})
}

// Init initializes a Grid instance.
func (g *Grid) Init(origin [3]int, width [3]int) {
	g.Origin = origin
	g.Width = width

	g.Length = width[0]
	g.Area = width[0] * width[1]
	g.Volume = width[0] * width[1] * width[2]

	for i := 0; i < 3; i++ {
		g.uBounds[i] = g.Origin[i] + g.Width[i]
	}
}

// Idx returns the grid index corresponding to a set of coordinates.
func (g *Grid) Idx(x, y, z int) int {
	return (x - g.Origin[0]) + (y-g.Origin[1])*g.Length +
		(z-g.Origin[2])*g.Area
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}

	return g.Idx(x, y, z), true
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	return (g.Origin[0] <= x && g.Origin[1] <= y && g.Origin[2] <= z) &&
		(x < g.uBounds[0] && y < g.uBounds[1] && z < g.uBounds[2])
}

// Coords returns the x, y, z coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx%g.Length + g.Origin[0]
	y = (idx%g.Area)/g.Length + g.Origin[1]
	z = idx/g.Area + g.Origin[2]
	return x, y, z
}

// Blocks partitions the grid into blocks of width^3 cells. Blocks which
// would extend past the edge of the grid are clipped. width must be
// positive.
func (g *Grid) Blocks(width int) []CellBounds {
	var n [3]int
	for i := 0; i < 3; i++ {
		n[i] = (g.Width[i] + width - 1) / width
	}

	blocks := make([]CellBounds, 0, n[0]*n[1]*n[2])
	for bz := 0; bz < n[2]; bz++ {
		for by := 0; by < n[1]; by++ {
			for bx := 0; bx < n[0]; bx++ {
				cb := CellBounds{}
				b := [3]int{bx, by, bz}
				for i := 0; i < 3; i++ {
					cb.Origin[i] = g.Origin[i] + b[i]*width
					cb.Width[i] = width
					if end := cb.Origin[i] + width; end > g.uBounds[i] {
						cb.Width[i] = g.uBounds[i] - cb.Origin[i]
					}
				}
				blocks = append(blocks, cb)
			}
		}
	}
	return blocks
}

// Cells returns the number of cells inside the bounding box.
func (cb *CellBounds) Cells() int {
	return cb.Width[0] * cb.Width[1] * cb.Width[2]
}

// End returns the exclusive upper corner of the bounding box.
func (cb *CellBounds) End() [3]int {
	return [3]int{
		cb.Origin[0] + cb.Width[0],
		cb.Origin[1] + cb.Width[1],
		cb.Origin[2] + cb.Width[2],
	}
}
