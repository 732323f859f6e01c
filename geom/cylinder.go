package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cylinder returns a closed, faceted cylinder aligned with the z axis. The
// side is made of segments quads, each split into two triangles, and each
// cap is a triangle fan around the cap's center.
func Cylinder(center r3.Vec, radius, height float64, segments int) []Triangle {
	tris := make([]Triangle, 0, 4*segments)
	step := 2 * math.Pi / float64(segments)
	zLow, zHigh := center.Z-height/2, center.Z+height/2
	bottom := r3.Vec{X: center.X, Y: center.Y, Z: zLow}
	top := r3.Vec{X: center.X, Y: center.Y, Z: zHigh}

	for i := 0; i < segments; i++ {
		a1, a2 := float64(i)*step, float64((i+1)%segments)*step
		x1, y1 := center.X+radius*math.Cos(a1), center.Y+radius*math.Sin(a1)
		x2, y2 := center.X+radius*math.Cos(a2), center.Y+radius*math.Sin(a2)

		b1, b2 := r3.Vec{X: x1, Y: y1, Z: zLow}, r3.Vec{X: x2, Y: y2, Z: zLow}
		t1, t2 := r3.Vec{X: x1, Y: y1, Z: zHigh}, r3.Vec{X: x2, Y: y2, Z: zHigh}

		tris = append(tris,
			Triangle{b1, b2, t1},
			Triangle{b2, t2, t1},
			Triangle{bottom, b2, b1},
			Triangle{top, t1, t2},
		)
	}

	return tris
}
