package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const testEps = 1e-9

func unitTriangle() Triangle {
	return Triangle{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
}

func TestTriangleBounds(t *testing.T) {
	tri := Triangle{{X: 1, Y: -2, Z: 3}, {X: -1, Y: 4, Z: 0}, {X: 0.5, Y: 0, Z: 7}}
	min, max := tri.Bounds()
	assert.Equal(t, r3.Vec{X: -1, Y: -2, Z: 0}, min)
	assert.Equal(t, r3.Vec{X: 1, Y: 4, Z: 7}, max)
}

func TestTriangleArea(t *testing.T) {
	tri := unitTriangle()
	assert.InDelta(t, 0.5, tri.Area(), testEps)
}

func TestDegenerate(t *testing.T) {
	table := []struct {
		tri        Triangle
		degenerate bool
	}{
		{unitTriangle(), false},
		{Triangle{{X: 0}, {X: 1}, {X: 2}}, true},
		{Triangle{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}, true},
		{Triangle{{X: 0}, {X: 0}, {Y: 1}}, true},
		{Triangle{{X: 0}, {X: 1e-3}, {Y: 1e-3}}, false},
	}

	for i, test := range table {
		if got := test.tri.Degenerate(); got != test.degenerate {
			t.Errorf("%d) Expected Degenerate() = %v for %v.",
				i, test.degenerate, test.tri)
		}
	}
}

func TestProjectorDistance(t *testing.T) {
	tri := unitTriangle()
	p, ok := NewProjector(&tri)
	require.True(t, ok)

	table := []struct {
		q    r3.Vec
		dist float64
	}{
		// Above the interior: plane distance.
		{r3.Vec{X: 0.25, Y: 0.25, Z: 0.3}, 0.3},
		{r3.Vec{X: 0.25, Y: 0.25, Z: -0.3}, 0.3},
		{r3.Vec{X: 0.1, Y: 0.1, Z: 0}, 0},
		// Beyond an edge: edge distance.
		{r3.Vec{X: 0.5, Y: -1, Z: 0}, 1},
		{r3.Vec{X: -2, Y: 0.5, Z: 0}, 2},
		{r3.Vec{X: 1, Y: 1, Z: 0}, math.Sqrt2 / 2},
		// Beyond a corner.
		{r3.Vec{X: -3, Y: -4, Z: 0}, 5},
		{r3.Vec{X: 2, Y: 0, Z: 1}, math.Sqrt2},
	}

	for i, test := range table {
		if d := p.Distance(test.q); math.Abs(d-test.dist) > testEps {
			t.Errorf("%d) Distance(%v) = %g, expected %g.",
				i, test.q, d, test.dist)
		}
	}
}

func TestBarycentricCorners(t *testing.T) {
	tri := Triangle{{X: 1, Y: 1, Z: 1}, {X: 2, Y: 1, Z: 1}, {X: 1, Y: 3, Z: 1}}
	p, ok := NewProjector(&tri)
	require.True(t, ok)

	// e0 points at the third corner and e1 at the second.
	u, v, d := p.Barycentric(tri[2])
	assert.InDelta(t, 1, u, testEps)
	assert.InDelta(t, 0, v, testEps)
	assert.InDelta(t, 0, d, testEps)

	u, v, _ = p.Barycentric(tri[1])
	assert.InDelta(t, 0, u, testEps)
	assert.InDelta(t, 1, v, testEps)
}

func TestCylinder(t *testing.T) {
	center := r3.Vec{X: 1, Y: 2, Z: 3}
	tris := Cylinder(center, 0.5, 2, 20)
	require.Len(t, tris, 80)

	area := 0.0
	for i := range tris {
		require.False(t, tris[i].Degenerate(), "triangle %d", i)
		area += tris[i].Area()

		min, max := tris[i].Bounds()
		assert.True(t, min.Z >= 2-testEps && max.Z <= 4+testEps)
		for _, v := range tris[i] {
			r := math.Hypot(v.X-center.X, v.Y-center.Y)
			assert.True(t, r <= 0.5+testEps)
		}
	}

	// Side: 20 rectangles of chord * height; caps: two 20-gons.
	chord := 2 * 0.5 * math.Sin(math.Pi/20)
	polygon := 0.5 * 20 * 0.25 * math.Sin(2*math.Pi/20)
	assert.InDelta(t, 20*chord*2+2*polygon, area, 1e-9)
}
