package voxel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/golbm/geom"
	"github.com/phil-mansfield/golbm/lattice"
	"github.com/phil-mansfield/golbm/lbmerr"
)

// plane returns two triangles covering the square [lo, hi]^2 in the xy
// plane at height z.
func plane(lo, hi, z float64) []geom.Triangle {
	a := r3.Vec{X: lo, Y: lo, Z: z}
	b := r3.Vec{X: hi, Y: lo, Z: z}
	c := r3.Vec{X: hi, Y: hi, Z: z}
	d := r3.Vec{X: lo, Y: hi, Z: z}
	return []geom.Triangle{{a, b, c}, {a, c, d}}
}

func TestParamsValidate(t *testing.T) {
	good := DefaultParams(10, 5, 5, 0.1, 0.1, 0.1)
	require.NoError(t, good.Validate())

	table := []func(p *Params){
		func(p *Params) { p.Nx = 1 },
		func(p *Params) { p.Ny = 0 },
		func(p *Params) { p.Nz = -3 },
		func(p *Params) { p.Dx = 0 },
		func(p *Params) { p.Dy = math.NaN() },
		func(p *Params) { p.Dz = -0.1 },
		func(p *Params) { p.Samples = 0 },
		func(p *Params) { p.Thickness = 0 },
	}

	for i, mod := range table {
		p := good
		mod(&p)
		err := p.Validate()
		if !lbmerr.Is(err, lbmerr.ConfigError) {
			t.Errorf("%d) Expected ConfigError, got %v.", i, err)
		}
		_, err = Classify(plane(0, 1, 0.25), p)
		if !lbmerr.Is(err, lbmerr.ConfigError) {
			t.Errorf("%d) Expected Classify to return ConfigError, got %v.",
				i, err)
		}
	}
}

func TestClassifyEmptyMesh(t *testing.T) {
	p := DefaultParams(10, 5, 5, 0.1, 0.1, 0.1)
	_, err := Classify(nil, p)
	assert.True(t, lbmerr.Is(err, lbmerr.GeometryError), "got %v", err)
}

func TestClassifyDegenerateMesh(t *testing.T) {
	p := DefaultParams(10, 5, 5, 0.1, 0.1, 0.1)
	tris := []geom.Triangle{
		{{X: 0.1}, {X: 0.2}, {X: 0.3}},
		{{X: 0.2, Y: 0.2}, {X: 0.2, Y: 0.2}, {X: 0.2, Y: 0.2}},
	}
	_, err := Classify(tris, p)
	assert.True(t, lbmerr.Is(err, lbmerr.GeometryError), "got %v", err)

	// Degenerate triangles mixed into a usable mesh are skipped.
	tris = append(tris, plane(-1, 2, 0.25)...)
	c, err := Classify(tris, p)
	require.NoError(t, err)
	assert.Equal(t, 40, c.Count(lattice.Solid))
}

func TestClassifyPlane(t *testing.T) {
	p := DefaultParams(10, 5, 5, 0.1, 0.1, 0.1)
	c, err := Classify(plane(-1, 2, 0.25), p)
	require.NoError(t, err)

	require.Equal(t, 250, c.Len())
	assert.Equal(t, 25, c.Count(lattice.Inlet))
	assert.Equal(t, 25, c.Count(lattice.Outlet))
	assert.Equal(t, 40, c.Count(lattice.Solid))
	assert.Equal(t, 160, c.Count(lattice.Fluid))

	for z := 0; z < 5; z++ {
		for y := 0; y < 5; y++ {
			for x := 0; x < 10; x++ {
				var expected lattice.NodeType
				switch {
				case x == 0:
					expected = lattice.Inlet
				case x == 9:
					expected = lattice.Outlet
				case z == 2:
					expected = lattice.Solid
				default:
					expected = lattice.Fluid
				}
				if got := c.TypeAt(x, y, z); got != expected {
					t.Errorf("Cell (%d, %d, %d) is %v, expected %v.",
						x, y, z, got, expected)
				}
			}
		}
	}

	// The layers touching the sheet are boundary candidates, the rest are
	// not.
	g := c.Grid()
	for idx := 0; idx < c.Len(); idx++ {
		_, _, z := g.Coords(idx)
		expected := z >= 1 && z <= 3
		if got := c.IsBoundary(idx); got != expected {
			x, y, _ := g.Coords(idx)
			t.Errorf("IsBoundary(%d, %d, %d) = %v.", x, y, z, got)
		}
	}
}

func TestClassifyPlanesOverrideMesh(t *testing.T) {
	// A sheet lying in the x = 0 and x = nx-1 planes.
	p := DefaultParams(10, 5, 5, 0.1, 0.1, 0.1)
	p.FillInterior = false
	wall := func(x float64) []geom.Triangle {
		a := r3.Vec{X: x, Y: -1, Z: -1}
		b := r3.Vec{X: x, Y: 2, Z: -1}
		c := r3.Vec{X: x, Y: 2, Z: 2}
		d := r3.Vec{X: x, Y: -1, Z: 2}
		return []geom.Triangle{{a, b, c}, {a, c, d}}
	}
	tris := append(wall(0.05), wall(0.95)...)

	c, err := Classify(tris, p)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Count(lattice.Solid))
	assert.Equal(t, 25, c.Count(lattice.Inlet))
	assert.Equal(t, 25, c.Count(lattice.Outlet))
}

func cylinderParams() (Params, []geom.Triangle) {
	p := DefaultParams(30, 30, 30, 0.1, 0.1, 0.1)
	center := r3.Vec{X: 1.5, Y: 1.5, Z: 1.5}
	return p, geom.Cylinder(center, 1.0, 2.0, 20)
}

func TestClassifyCylinderVolume(t *testing.T) {
	p, tris := cylinderParams()
	c, err := Classify(tris, p)
	require.NoError(t, err)

	r, h, dx := 1.0, 2.0, 0.1
	exact := math.Pi * r * r * h / (dx * dx * dx)
	shell := (r + 0.8*dx) * (r + 0.8*dx) * (h + 1.6*dx) / (r * r * h)

	solid := float64(c.Count(lattice.Solid))
	assert.True(t, solid >= 0.85*exact,
		"%g solid cells, expected at least %g", solid, 0.85*exact)
	assert.True(t, solid <= (shell+0.05)*exact,
		"%g solid cells, expected at most %g", solid, (shell+0.05)*exact)

	assert.Equal(t, lattice.Solid, c.TypeAt(15, 15, 15))
	assert.Equal(t, lattice.Fluid, c.TypeAt(2, 2, 2))
	assert.Equal(t, 900, c.Count(lattice.Inlet))
	assert.Equal(t, 900, c.Count(lattice.Outlet))
}

func TestClassifyCylinderShell(t *testing.T) {
	p, tris := cylinderParams()
	p.FillInterior = false
	shell, err := Classify(tris, p)
	require.NoError(t, err)

	p.FillInterior = true
	filled, err := Classify(tris, p)
	require.NoError(t, err)

	assert.Equal(t, lattice.Fluid, shell.TypeAt(15, 15, 15))
	assert.True(t, shell.Count(lattice.Solid) > 0)
	assert.True(t, shell.Count(lattice.Solid) < filled.Count(lattice.Solid))

	// Filling only adds cells.
	for idx := 0; idx < shell.Len(); idx++ {
		if shell.Type(idx) == lattice.Solid && filled.Type(idx) != lattice.Solid {
			t.Fatalf("Cell %d is solid in the shell but not when filled.", idx)
		}
	}
}

func TestBoundaryNeighborsSolid(t *testing.T) {
	p, tris := cylinderParams()
	c, err := Classify(tris, p)
	require.NoError(t, err)
	g := c.Grid()

	fluidBoundary := 0
	for idx := 0; idx < c.Len(); idx++ {
		if !c.IsBoundary(idx) {
			continue
		}
		if c.Type(idx) == lattice.Fluid {
			fluidBoundary++
		}

		x, y, z := g.Coords(idx)
		found := false
		for dz := -1; dz <= 1 && !found; dz++ {
			for dy := -1; dy <= 1 && !found; dy++ {
				for dx := -1; dx <= 1 && !found; dx++ {
					n, ok := g.IdxCheck(x+dx, y+dy, z+dz)
					found = ok && (dx|dy|dz) != 0 && c.Type(n) == lattice.Solid
				}
			}
		}
		if !found {
			t.Fatalf("Boundary cell (%d, %d, %d) has no solid neighbor.",
				x, y, z)
		}
	}

	assert.True(t, fluidBoundary > 0)
	assert.False(t, c.IsBoundary(g.Idx(2, 2, 2)))
}

func TestUnobstructed(t *testing.T) {
	c, err := Unobstructed(DefaultParams(10, 5, 5, 0.1, 0.1, 0.1))
	require.NoError(t, err)

	assert.Equal(t, 25, c.Count(lattice.Inlet))
	assert.Equal(t, 25, c.Count(lattice.Outlet))
	assert.Equal(t, 200, c.Count(lattice.Fluid))
	assert.Equal(t, 0, c.Count(lattice.Solid))
	assert.Equal(t, 0, c.Count(lattice.EndNodeType))
	assert.Equal(t, lattice.Inlet, c.TypeAt(0, 4, 4))
	assert.Equal(t, lattice.Outlet, c.TypeAt(9, 0, 3))

	_, err = Unobstructed(DefaultParams(1, 5, 5, 0.1, 0.1, 0.1))
	assert.True(t, lbmerr.Is(err, lbmerr.ConfigError))
}

func TestFromTypes(t *testing.T) {
	g := geom.NewDomain(2, 2, 2)
	types := make([]lattice.NodeType, 8)
	types[3] = lattice.Solid

	c, err := FromTypes(g, types)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count(lattice.Solid))
	assert.Equal(t, 7, c.Count(lattice.Fluid))

	// Later changes to the input don't leak into the classification.
	types[3] = lattice.Fluid
	assert.Equal(t, lattice.Solid, c.Type(3))
	out := c.Types()
	out[3] = lattice.Inlet
	assert.Equal(t, lattice.Solid, c.Type(3))

	_, err = FromTypes(g, types[:7])
	assert.True(t, lbmerr.Is(err, lbmerr.ConfigError))

	types[0] = lattice.EndNodeType
	_, err = FromTypes(g, types)
	assert.True(t, lbmerr.Is(err, lbmerr.ConfigError))
}

func BenchmarkClassifyCylinder(b *testing.B) {
	p, tris := cylinderParams()
	for i := 0; i < b.N; i++ {
		Classify(tris, p)
	}
}
