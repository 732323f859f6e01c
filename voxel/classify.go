package voxel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

const (
	// DefaultSamples is the default number of samples per cell along each
	// axis.
	DefaultSamples = 3
	// DefaultThickness is the default surface thickness threshold in units
	// of the smallest grid spacing.
	DefaultThickness = 0.8
)

// Params describes the grid a mesh is voxelized onto and the tunable
// constants of the surface test.
type Params struct {
	Nx, Ny, Nz int
	Dx, Dy, Dz float64

	// Samples is the number of sample points per cell along each axis.
	Samples int
	// Thickness is the surface thickness threshold as a multiple of
	// min(Dx, Dy, Dz).
	Thickness float64
	// FillInterior marks cells enclosed by the surface as Solid.
	FillInterior bool
}

// DefaultParams returns Params for the given grid with the default surface
// test constants and interior filling enabled.
func DefaultParams(nx, ny, nz int, dx, dy, dz float64) Params {
	return Params{
		Nx: nx, Ny: ny, Nz: nz,
		Dx: dx, Dy: dy, Dz: dz,
		Samples:      DefaultSamples,
		Thickness:    DefaultThickness,
		FillInterior: true,
	}
}

// Validate returns a ConfigError if any parameter is out of range.
func (p *Params) Validate() error {
	switch {
	case p.Nx < 2:
		return lbmerr.Config("Classify",
			"Nx must be at least 2 so the inlet and outlet planes differ, "+
				"but is %d", p.Nx)
	case p.Ny <= 0:
		return lbmerr.Config("Classify", "Ny must be positive, but is %d", p.Ny)
	case p.Nz <= 0:
		return lbmerr.Config("Classify", "Nz must be positive, but is %d", p.Nz)
	case !(p.Dx > 0):
		return lbmerr.Config("Classify", "Dx must be positive, but is %g", p.Dx)
	case !(p.Dy > 0):
		return lbmerr.Config("Classify", "Dy must be positive, but is %g", p.Dy)
	case !(p.Dz > 0):
		return lbmerr.Config("Classify", "Dz must be positive, but is %g", p.Dz)
	case p.Samples <= 0:
		return lbmerr.Config("Classify",
			"Samples must be positive, but is %d", p.Samples)
	case !(p.Thickness > 0):
		return lbmerr.Config("Classify",
			"Thickness must be positive, but is %g", p.Thickness)
	}
	return nil
}

// Threshold returns the distance below which a sample counts as inside the
// surface.
func (p *Params) Threshold() float64 {
	return p.Thickness * math.Min(p.Dx, math.Min(p.Dy, p.Dz))
}

// Classify voxelizes tris onto the grid described by p. A cell becomes
// Solid when a strict majority of its sample points lie within the
// thickness threshold of a single triangle. Degenerate triangles are
// skipped. The x = 0 plane is always Inlet and the x = Nx-1 plane is always
// Outlet, whatever the mesh says.
func Classify(tris []geom.Triangle, p Params) (*Classification, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, lbmerr.Geometry("Classify", "Mesh contains no triangles")
	}

	g := geom.NewDomain(p.Nx, p.Ny, p.Nz)
	vx := newVoxelizer(g, &p)

	used := 0
	for i := range tris {
		proj, ok := geom.NewProjector(&tris[i])
		if !ok {
			continue
		}
		used++
		vx.addTriangle(&tris[i], proj)
	}

	if used == 0 {
		return nil, lbmerr.Geometry("Classify",
			"All %d triangles in the mesh are degenerate", len(tris))
	}

	if p.FillInterior {
		fillInterior(g, vx.solid)
	}

	types := make([]lattice.NodeType, g.Volume)
	for idx, s := range vx.solid {
		if s {
			types[idx] = lattice.Solid
		}
	}
	applyPlanes(g, types)

	return newClassification(g, types, vx.boundary), nil
}

// Unobstructed returns the classification of a domain without obstacles:
// every cell is Fluid except the inlet and outlet planes.
func Unobstructed(p Params) (*Classification, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := geom.NewDomain(p.Nx, p.Ny, p.Nz)
	types := make([]lattice.NodeType, g.Volume)
	applyPlanes(g, types)
	return newClassification(g, types, nil), nil
}

// applyPlanes forces the x = 0 plane to Inlet and the x = nx-1 plane to
// Outlet.
func applyPlanes(g *geom.Grid, types []lattice.NodeType) {
	last := g.Width[0] - 1
	for z := 0; z < g.Width[2]; z++ {
		for y := 0; y < g.Width[1]; y++ {
			types[g.Idx(0, y, z)] = lattice.Inlet
			types[g.Idx(last, y, z)] = lattice.Outlet
		}
	}
}

// voxelizer holds the working state of a single Classify call.
type voxelizer struct {
	g               *geom.Grid
	d               [3]float64
	thr             float64
	offsets         []float64
	need            int
	solid, boundary []bool
}

func newVoxelizer(g *geom.Grid, p *Params) *voxelizer {
	vx := &voxelizer{
		g:        g,
		d:        [3]float64{p.Dx, p.Dy, p.Dz},
		thr:      p.Threshold(),
		offsets:  make([]float64, p.Samples),
		solid:    make([]bool, g.Volume),
		boundary: make([]bool, g.Volume),
	}

	for s := range vx.offsets {
		vx.offsets[s] = (float64(s) + 0.5) / float64(p.Samples)
	}
	vx.need = p.Samples*p.Samples*p.Samples/2 + 1

	return vx
}

// indexRange converts the triangle's bounding box, padded by the thickness
// threshold, to an inclusive range of cell indices along one axis. ok is
// false if the range misses the grid entirely.
func (vx *voxelizer) indexRange(min, max float64, dim int) (lo, hi int, ok bool) {
	n := vx.g.Width[dim]
	lo = int(math.Floor((min - vx.thr) / vx.d[dim]))
	hi = int(math.Ceil((max + vx.thr) / vx.d[dim]))
	if hi < 0 || lo > n-1 {
		return 0, 0, false
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi, true
}

func (vx *voxelizer) addTriangle(tri *geom.Triangle, proj *geom.Projector) {
	min, max := tri.Bounds()
	x0, x1, okx := vx.indexRange(min.X, max.X, 0)
	y0, y1, oky := vx.indexRange(min.Y, max.Y, 1)
	z0, z1, okz := vx.indexRange(min.Z, max.Z, 2)
	if !okx || !oky || !okz {
		return
	}

	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				idx := vx.g.Idx(x, y, z)
				if vx.solid[idx] || !vx.majorityInside(proj, x, y, z) {
					continue
				}
				vx.solid[idx] = true
				vx.markNeighbors(x, y, z)
			}
		}
	}
}

// majorityInside returns true if a strict majority of the cell's samples lie
// within the thickness threshold of the triangle.
func (vx *voxelizer) majorityInside(proj *geom.Projector, x, y, z int) bool {
	n := len(vx.offsets)
	total := n * n * n
	inside, tested := 0, 0

	for _, oz := range vx.offsets {
		for _, oy := range vx.offsets {
			for _, ox := range vx.offsets {
				q := r3.Vec{
					X: (float64(x) + ox) * vx.d[0],
					Y: (float64(y) + oy) * vx.d[1],
					Z: (float64(z) + oz) * vx.d[2],
				}
				if proj.Distance(q) < vx.thr {
					inside++
				}
				tested++

				if inside >= vx.need {
					return true
				} else if inside+(total-tested) < vx.need {
					return false
				}
			}
		}
	}
	return false
}

// markNeighbors flags the 26 neighbours of (x, y, z) as boundary
// candidates.
func (vx *voxelizer) markNeighbors(x, y, z int) {
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if idx, ok := vx.g.IdxCheck(x+dx, y+dy, z+dz); ok {
					vx.boundary[idx] = true
				}
			}
		}
	}
}
